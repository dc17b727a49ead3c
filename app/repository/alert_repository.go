package repository

import (
	"fmt"
	"time"

	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// alertRepository implements the AlertRepository interface
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository instance
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// Create creates a new alert in the database
func (r *alertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// GetByID retrieves an alert by its ID
func (r *alertRepository) GetByID(id uint) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.First(&alert, id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// GetByUUID retrieves an alert by its public UUID
func (r *alertRepository) GetByUUID(uuid string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.Where("uuid = ?", uuid).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// GetPublished retrieves published alerts visible at the given tiers.
// An empty tier slice returns no rows rather than all rows.
func (r *alertRepository) GetPublished(tiers []string, offset, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	if len(tiers) == 0 {
		return alerts, nil
	}
	err := r.db.Where("published = ? AND min_tier IN ?", true, tiers).
		Order("published_at DESC").Offset(offset).Limit(limit).Find(&alerts).Error
	return alerts, err
}

// GetBySymbol retrieves the most recent published alerts for a symbol
func (r *alertRepository) GetBySymbol(symbol string, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.Where("published = ? AND symbol = ?", true, symbol).
		Order("published_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, err
}

// GetRecent retrieves the newest published alerts visible at the given tiers
func (r *alertRepository) GetRecent(tiers []string, limit int) ([]models.Alert, error) {
	return r.GetPublished(tiers, 0, limit)
}

// List retrieves a paginated list of all alerts, drafts included
func (r *alertRepository) List(offset, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&alerts).Error
	return alerts, err
}

// Update updates an existing alert in the database
func (r *alertRepository) Update(alert *models.Alert) error {
	return r.db.Save(alert).Error
}

// Delete soft deletes an alert by its ID
func (r *alertRepository) Delete(id uint) error {
	return r.db.Delete(&models.Alert{}, id).Error
}

// Count returns the total number of alerts
func (r *alertRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).Count(&count).Error
	return count, err
}

// CountPublished returns the number of published alerts visible at the given tiers
func (r *alertRepository) CountPublished(tiers []string) (int64, error) {
	var count int64
	if len(tiers) == 0 {
		return 0, nil
	}
	err := r.db.Model(&models.Alert{}).
		Where("published = ? AND min_tier IN ?", true, tiers).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of alerts in a given status
func (r *alertRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetDailyStats returns daily published alert counts for a date range
func (r *alertRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.Alert{}).
		Select("DATE_FORMAT(published_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("published = ? AND published_at BETWEEN ? AND ?", true, startDate, endDate).
		Group("DATE_FORMAT(published_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily alert stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}

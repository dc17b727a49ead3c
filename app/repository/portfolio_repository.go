package repository

import (
	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// portfolioRepository implements the PortfolioRepository interface
type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new portfolio repository instance
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Create creates a new portfolio position in the database
func (r *portfolioRepository) Create(position *models.PortfolioPosition) error {
	return r.db.Create(position).Error
}

// GetByID retrieves a position by its ID
func (r *portfolioRepository) GetByID(id uint) (*models.PortfolioPosition, error) {
	var position models.PortfolioPosition
	err := r.db.First(&position, id).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// GetByUserID retrieves all positions for a user, newest first
func (r *portfolioRepository) GetByUserID(userID uint) ([]models.PortfolioPosition, error) {
	var positions []models.PortfolioPosition
	err := r.db.Where("user_id = ?", userID).Order("opened_at DESC").Find(&positions).Error
	return positions, err
}

// GetOpenByUserID retrieves open positions for a user
func (r *portfolioRepository) GetOpenByUserID(userID uint) ([]models.PortfolioPosition, error) {
	var positions []models.PortfolioPosition
	err := r.db.Where("user_id = ? AND closed_at IS NULL", userID).
		Order("opened_at DESC").Find(&positions).Error
	return positions, err
}

// Update updates an existing position in the database
func (r *portfolioRepository) Update(position *models.PortfolioPosition) error {
	return r.db.Save(position).Error
}

// Delete soft deletes a position by its ID
func (r *portfolioRepository) Delete(id uint) error {
	return r.db.Delete(&models.PortfolioPosition{}, id).Error
}

// CountByUserID returns the number of positions held by a user
func (r *portfolioRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PortfolioPosition{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

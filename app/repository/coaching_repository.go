package repository

import (
	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// coachingRepository implements the CoachingRepository interface
type coachingRepository struct {
	db *gorm.DB
}

// NewCoachingRepository creates a new coaching repository instance
func NewCoachingRepository(db *gorm.DB) CoachingRepository {
	return &coachingRepository{db: db}
}

// GetByID retrieves a coaching purchase by its ID
func (r *coachingRepository) GetByID(id uint) (*models.CoachingPurchase, error) {
	var purchase models.CoachingPurchase
	err := r.db.First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetByUserID retrieves all coaching purchases for a user, newest first
func (r *coachingRepository) GetByUserID(userID uint) ([]models.CoachingPurchase, error) {
	var purchases []models.CoachingPurchase
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

// GetByCheckoutID retrieves a coaching purchase by its checkout session ID
func (r *coachingRepository) GetByCheckoutID(checkoutID string) (*models.CoachingPurchase, error) {
	var purchase models.CoachingPurchase
	err := r.db.Where("checkout_id = ?", checkoutID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// List retrieves a paginated list of coaching purchases for admin views
func (r *coachingRepository) List(offset, limit int) ([]models.CoachingPurchase, error) {
	var purchases []models.CoachingPurchase
	err := r.db.Preload("User").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&purchases).Error
	return purchases, err
}

// Update updates an existing coaching purchase in the database
func (r *coachingRepository) Update(purchase *models.CoachingPurchase) error {
	return r.db.Save(purchase).Error
}

// Count returns the total number of coaching purchases
func (r *coachingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CoachingPurchase{}).Count(&count).Error
	return count, err
}

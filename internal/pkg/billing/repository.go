package billing

import (
	"time"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetOrCreateProfile(userID uint) (*models.Profile, error)
	SetStripeCustomerID(userID uint, customerID string) error
	UpdateProfileSubscription(userID uint, customerID, subscriptionID, tier string) error
	CreateCoachingPurchase(purchase *models.CoachingPurchase) error
	MarkCoachingPurchasePaid(checkoutID, paymentIntentID string, amountCents int64, currency string) error
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrCreateProfile(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

func (r *gormRepository) SetStripeCustomerID(userID uint, customerID string) error {
	return r.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}

// UpdateProfileSubscription overwrites the three reconciled fields in one
// statement. The full overwrite, never an increment, is what makes event
// replay naturally idempotent. Employee profiles are an out-of-band override
// and stay untouched by subscription events.
func (r *gormRepository) UpdateProfileSubscription(userID uint, customerID, subscriptionID, tier string) error {
	return r.db.Model(&models.Profile{}).
		Where("user_id = ? AND tier <> ?", userID, string(permissions.TierEmployee)).
		Updates(map[string]interface{}{
			"stripe_customer_id":     customerID,
			"stripe_subscription_id": subscriptionID,
			"tier":                   tier,
		}).Error
}

func (r *gormRepository) CreateCoachingPurchase(purchase *models.CoachingPurchase) error {
	return r.db.Create(purchase).Error
}

func (r *gormRepository) MarkCoachingPurchasePaid(checkoutID, paymentIntentID string, amountCents int64, currency string) error {
	now := time.Now()
	return r.db.Model(&models.CoachingPurchase{}).
		Where("checkout_id = ? AND status = ?", checkoutID, models.CoachingStatusPending).
		Updates(map[string]interface{}{
			"status":            models.CoachingStatusPaid,
			"payment_intent_id": paymentIntentID,
			"amount_cents":      amountCents,
			"currency":          currency,
			"paid_at":           &now,
		}).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

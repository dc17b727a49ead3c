package models

import "time"

const (
	CoachingStatusPending   = "pending"
	CoachingStatusPaid      = "paid"
	CoachingStatusScheduled = "scheduled"
	CoachingStatusCompleted = "completed"
	CoachingStatusRefunded  = "refunded"
)

// CoachingPurchase records a one-time coaching session payment. Rows are
// created in status "pending" when the checkout session is opened and moved
// to "paid" by the webhook reconciler when the payment completes.
type CoachingPurchase struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
	PriceID         string     `gorm:"type:varchar(191);not null" json:"price_id"`
	CheckoutID      string     `gorm:"type:varchar(191);default:'';index" json:"checkout_id"`
	PaymentIntentID string     `gorm:"type:varchar(191);default:''" json:"payment_intent_id"`
	AmountCents     int64      `gorm:"default:0" json:"amount_cents"`
	Currency        string     `gorm:"type:varchar(10);default:''" json:"currency"`
	Status          string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaidAt          *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	ScheduledFor    *time.Time `gorm:"type:timestamp;default:null" json:"scheduled_for,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the purchase has been paid for.
func (c *CoachingPurchase) IsPaid() bool {
	return c.Status == CoachingStatusPaid || c.Status == CoachingStatusScheduled || c.Status == CoachingStatusCompleted
}

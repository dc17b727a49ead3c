package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AlertStatusActive  = "active"
	AlertStatusHit     = "hit"
	AlertStatusStopped = "stopped"
	AlertStatusExpired = "expired"
)

// Alert is a published trading alert with its buy zone and target levels.
// MinTier gates visibility: free users only see alerts with MinTier "free".
type Alert struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Symbol       string         `gorm:"type:varchar(12);not null;index" json:"symbol" validate:"required,min=1,max=12"`
	Title        string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=3,max=255"`
	Notes        string         `gorm:"type:text" json:"notes"`
	EntryLow     float64        `gorm:"type:decimal(12,4)" json:"entry_low" validate:"gt=0"`
	EntryHigh    float64        `gorm:"type:decimal(12,4)" json:"entry_high" validate:"gtefield=EntryLow"`
	TargetPrice  float64        `gorm:"type:decimal(12,4)" json:"target_price" validate:"gt=0"`
	StopLoss     float64        `gorm:"type:decimal(12,4)" json:"stop_loss"`
	MinTier      string         `gorm:"type:varchar(50);default:'paid';index" json:"min_tier"`
	Status       string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Published    bool           `gorm:"default:false;index" json:"published"`
	ViewCount    uint64         `gorm:"default:0" json:"view_count"`
	CreatedByID  uint           `gorm:"index" json:"created_by_id"`
	CreatedBy    User           `gorm:"foreignKey:CreatedByID" json:"-"`
	PublishedAt  *time.Time     `gorm:"type:timestamp;default:null" json:"published_at,omitempty"`
	ClosedAt     *time.Time     `gorm:"type:timestamp;default:null" json:"closed_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public UUID.
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

// IsOpen reports whether the alert is still tracking toward its target.
func (a *Alert) IsOpen() bool {
	return a.Status == AlertStatusActive
}

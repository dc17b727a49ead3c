package models

import (
	"time"

	"gorm.io/gorm"
)

// PortfolioPosition is a simulated position in a user's paper portfolio.
type PortfolioPosition struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Symbol     string         `gorm:"type:varchar(12);not null;index" json:"symbol" validate:"required,min=1,max=12"`
	Shares     float64        `gorm:"type:decimal(14,4);not null" json:"shares" validate:"gt=0"`
	EntryPrice float64        `gorm:"type:decimal(12,4);not null" json:"entry_price" validate:"gt=0"`
	ExitPrice  *float64       `gorm:"type:decimal(12,4);default:null" json:"exit_price,omitempty"`
	Notes      string         `gorm:"type:text" json:"notes"`
	OpenedAt   time.Time      `gorm:"autoCreateTime" json:"opened_at"`
	ClosedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"closed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsClosed reports whether the position has been exited.
func (p *PortfolioPosition) IsClosed() bool {
	return p.ClosedAt != nil
}

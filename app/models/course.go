package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is an education course with ordered lessons. MinTier gates access;
// the default "premium" matches the education entitlement.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=3,max=255"`
	Slug        string         `gorm:"uniqueIndex;type:varchar(255)" json:"slug" validate:"required,min=3,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	MinTier     string         `gorm:"type:varchar(50);default:'premium'" json:"min_tier"`
	Published   bool           `gorm:"type:tinyint(1);default:0" json:"published"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	Lessons     []Lesson       `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Lesson is a single unit of course content.
type Lesson struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Title     string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=3,max=255"`
	Content   string         `gorm:"type:longtext" json:"content"`
	VideoURL  string         `gorm:"type:varchar(500);default:''" json:"video_url"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

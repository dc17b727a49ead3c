package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminPermissions holds the per-user admin capability flags. A row is
// created with all flags false when a user is promoted to admin; only the
// super-admin management endpoint mutates it afterwards.
type AdminPermissions struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CanManageUsers     bool      `gorm:"default:false" json:"canManageUsers"`
	CanCreateAlerts    bool      `gorm:"default:false" json:"canCreateAlerts"`
	CanEditAlerts      bool      `gorm:"default:false" json:"canEditAlerts"`
	CanDeleteAlerts    bool      `gorm:"default:false" json:"canDeleteAlerts"`
	CanManageEducation bool      `gorm:"default:false" json:"canManageEducation"`
	CanManageCoaching  bool      `gorm:"default:false" json:"canManageCoaching"`
	CanManageContent   bool      `gorm:"default:false" json:"canManageContent"`
	CanViewAnalytics   bool      `gorm:"default:false" json:"canViewAnalytics"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateAdminPermissions returns the capability row for a user, creating
// the all-false default on first access.
func GetOrCreateAdminPermissions(db *gorm.DB, userID uint) (*AdminPermissions, error) {
	var ap AdminPermissions
	if err := db.Where("user_id = ?", userID).First(&ap).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ap = AdminPermissions{UserID: userID}
			if err := db.Create(&ap).Error; err != nil {
				return nil, err
			}
			return &ap, nil
		}
		return nil, err
	}
	return &ap, nil
}

// AsMap exposes the capability flags keyed by their canonical names so the
// permission resolver can look them up without reflection.
func (ap *AdminPermissions) AsMap() map[string]bool {
	if ap == nil {
		return nil
	}
	return map[string]bool{
		"canManageUsers":     ap.CanManageUsers,
		"canCreateAlerts":    ap.CanCreateAlerts,
		"canEditAlerts":      ap.CanEditAlerts,
		"canDeleteAlerts":    ap.CanDeleteAlerts,
		"canManageEducation": ap.CanManageEducation,
		"canManageCoaching":  ap.CanManageCoaching,
		"canManageContent":   ap.CanManageContent,
		"canViewAnalytics":   ap.CanViewAnalytics,
	}
}

// SetCapability updates a single flag by its canonical name. Unknown keys are
// rejected so typos never silently grant nothing.
func (ap *AdminPermissions) SetCapability(key string, value bool) bool {
	switch key {
	case "canManageUsers":
		ap.CanManageUsers = value
	case "canCreateAlerts":
		ap.CanCreateAlerts = value
	case "canEditAlerts":
		ap.CanEditAlerts = value
	case "canDeleteAlerts":
		ap.CanDeleteAlerts = value
	case "canManageEducation":
		ap.CanManageEducation = value
	case "canManageCoaching":
		ap.CanManageCoaching = value
	case "canManageContent":
		ap.CanManageContent = value
	case "canViewAnalytics":
		ap.CanViewAnalytics = value
	default:
		return false
	}
	return true
}

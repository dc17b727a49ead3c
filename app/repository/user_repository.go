package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and membership profile.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var profile models.Profile
	query := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed)
	if err := query.First(&profile).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, profile.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &user, &profile, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search searches for users by name or email
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ?", searchPattern, searchPattern).Find(&users).Error
	return users, err
}

// GetWithProfiles retrieves users joined with their membership profiles
func (r *userRepository) GetWithProfiles(offset, limit int) ([]UserWithProfile, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return r.attachProfiles(users)
}

// SearchWithProfiles searches for users and attaches their membership profiles
func (r *userRepository) SearchWithProfiles(query string) ([]UserWithProfile, error) {
	users, err := r.Search(query)
	if err != nil {
		return nil, err
	}
	return r.attachProfiles(users)
}

func (r *userRepository) attachProfiles(users []models.User) ([]UserWithProfile, error) {
	var result []UserWithProfile
	for _, user := range users {
		profile, err := models.GetOrCreateProfile(r.db, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile for user %d: %w", user.ID, err)
		}

		var positions int64
		if err := r.db.Model(&models.PortfolioPosition{}).Where("user_id = ?", user.ID).Count(&positions).Error; err != nil {
			return nil, fmt.Errorf("failed to count positions for user %d: %w", user.ID, err)
		}

		result = append(result, UserWithProfile{
			User:          user,
			Profile:       *profile,
			PositionCount: positions,
		})
	}
	return result, nil
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	// DATE_FORMAT keeps the grouping MySQL-side
	err := r.db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily user stats: %w", err)
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

// GetTierStats returns the member count per subscription tier
func (r *userRepository) GetTierStats() ([]models.TierStats, error) {
	var results []struct {
		Tier  string `json:"tier"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.Profile{}).
		Select("tier, COUNT(*) as count").
		Group("tier").
		Order("count DESC").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get tier stats: %w", err)
	}

	tierStats := make([]models.TierStats, len(results))
	for i, result := range results {
		tierStats[i] = models.TierStats{
			Tier:  result.Tier,
			Count: int(result.Count),
		}
	}

	return tierStats, nil
}

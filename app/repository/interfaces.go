package repository

import (
	"time"

	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.Profile, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithProfiles(offset, limit int) ([]UserWithProfile, error)
	SearchWithProfiles(query string) ([]UserWithProfile, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
	GetTierStats() ([]models.TierStats, error)
}

// AlertRepository defines the interface for alert-related database operations
type AlertRepository interface {
	Create(alert *models.Alert) error
	GetByID(id uint) (*models.Alert, error)
	GetByUUID(uuid string) (*models.Alert, error)
	GetPublished(tiers []string, offset, limit int) ([]models.Alert, error)
	GetBySymbol(symbol string, limit int) ([]models.Alert, error)
	GetRecent(tiers []string, limit int) ([]models.Alert, error)
	List(offset, limit int) ([]models.Alert, error)
	Update(alert *models.Alert) error
	Delete(id uint) error
	Count() (int64, error)
	CountPublished(tiers []string) (int64, error)
	CountByStatus(status string) (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// PortfolioRepository defines the interface for paper portfolio operations
type PortfolioRepository interface {
	Create(position *models.PortfolioPosition) error
	GetByID(id uint) (*models.PortfolioPosition, error)
	GetByUserID(userID uint) ([]models.PortfolioPosition, error)
	GetOpenByUserID(userID uint) ([]models.PortfolioPosition, error)
	Update(position *models.PortfolioPosition) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
}

// CoachingRepository defines the interface for coaching purchase operations
type CoachingRepository interface {
	GetByID(id uint) (*models.CoachingPurchase, error)
	GetByUserID(userID uint) ([]models.CoachingPurchase, error)
	GetByCheckoutID(checkoutID string) (*models.CoachingPurchase, error)
	List(offset, limit int) ([]models.CoachingPurchase, error)
	Update(purchase *models.CoachingPurchase) error
	Count() (int64, error)
}

// CourseRepository defines the interface for education content operations
type CourseRepository interface {
	Create(course *models.Course) error
	GetByID(id uint) (*models.Course, error)
	GetBySlug(slug string) (*models.Course, error)
	GetPublished() ([]models.Course, error)
	GetAll() ([]models.Course, error)
	Update(course *models.Course) error
	Delete(id uint) error
	GetLesson(courseID, lessonID uint) (*models.Lesson, error)
	SaveLesson(lesson *models.Lesson) error
	DeleteLesson(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// NewsRepository defines the interface for news-related operations
type NewsRepository interface {
	Create(news *models.News) error
	GetByID(id uint) (*models.News, error)
	GetBySlug(slug string) (*models.News, error)
	GetPublished(offset, limit int) ([]models.News, error)
	GetAll(offset, limit int) ([]models.News, error)
	GetAllWithoutPagination() ([]models.News, error)
	Update(news *models.News) error
	Delete(id uint) error
	Count() (int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// UserWithProfile pairs a user with their membership profile for admin views
type UserWithProfile struct {
	User          models.User
	Profile       models.Profile
	PositionCount int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User      UserRepository
	Alert     AlertRepository
	Portfolio PortfolioRepository
	Coaching  CoachingRepository
	Course    CourseRepository
	News      NewsRepository
	Setting   SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Alert:     NewAlertRepository(db),
		Portfolio: NewPortfolioRepository(db),
		Coaching:  NewCoachingRepository(db),
		Course:    NewCourseRepository(db),
		News:      NewNewsRepository(db),
		Setting:   NewSettingRepository(db),
	}
}

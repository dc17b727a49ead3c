package repository

import (
	"github.com/tradewindhq/tradewind/app/models"
	"gorm.io/gorm"
)

// courseRepository implements the CourseRepository interface
type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository instance
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course in the database
func (r *courseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

// GetByID retrieves a course with its lessons by ID
func (r *courseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetBySlug retrieves a course with its lessons by slug
func (r *courseRepository) GetBySlug(slug string) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetPublished retrieves all published courses in display order
func (r *courseRepository) GetPublished() ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("published = ?", true).Order("sort_order ASC").Find(&courses).Error
	return courses, err
}

// GetAll retrieves all courses, drafts included
func (r *courseRepository) GetAll() ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Order("sort_order ASC").Find(&courses).Error
	return courses, err
}

// Update updates an existing course in the database
func (r *courseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

// Delete soft deletes a course and its lessons
func (r *courseRepository) Delete(id uint) error {
	if err := r.db.Where("course_id = ?", id).Delete(&models.Lesson{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Course{}, id).Error
}

// GetLesson retrieves a single lesson, scoped to its course
func (r *courseRepository) GetLesson(courseID, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.Where("course_id = ? AND id = ?", courseID, lessonID).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// SaveLesson creates or updates a lesson
func (r *courseRepository) SaveLesson(lesson *models.Lesson) error {
	return r.db.Save(lesson).Error
}

// DeleteLesson soft deletes a lesson by its ID
func (r *courseRepository) DeleteLesson(id uint) error {
	return r.db.Delete(&models.Lesson{}, id).Error
}

// SlugExists checks if a course slug already exists
func (r *courseRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks if a course slug exists excluding a specific ID
func (r *courseRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}

package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

// HandleAdminCourses lists all courses including drafts
func HandleAdminCourses(c *fiber.Ctx) error {
	courses, err := repository.GetGlobalFactory().GetCourseRepository().GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load courses")
	}

	return render(c, "admin/courses", "Education", fiber.Map{
		"Courses": courses,
	})
}

// HandleAdminCourseNew renders the creation form
func HandleAdminCourseNew(c *fiber.Ctx) error {
	return render(c, "admin/course_form", "New course", fiber.Map{
		"Course": &models.Course{MinTier: string(permissions.TierPremium)},
		"Tiers":  permissions.AllTiers(),
	})
}

// HandleAdminCourseCreate stores a new course
func HandleAdminCourseCreate(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetCourseRepository()

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		fm := fiber.Map{"type": "error", "message": "Title is required."}
		return flash.WithError(c, fm).Redirect("/admin/education/new")
	}
	minTier := c.FormValue("min_tier", string(permissions.TierPremium))
	if !permissions.Tier(minTier).Valid() {
		fm := fiber.Map{"type": "error", "message": "Unknown tier"}
		return flash.WithError(c, fm).Redirect("/admin/education/new")
	}

	course := &models.Course{
		Title:       title,
		Slug:        slugify(title, repo.SlugExists),
		Description: c.FormValue("description"),
		MinTier:     minTier,
		Published:   c.FormValue("published") == "on",
	}
	if order, err := strconv.Atoi(c.FormValue("sort_order", "0")); err == nil {
		course.SortOrder = order
	}
	if err := repo.Create(course); err != nil {
		fm := fiber.Map{"type": "error", "message": "Course could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/education/new")
	}

	fm := fiber.Map{"type": "success", "message": "Course created."}
	return flash.WithSuccess(c, fm).Redirect("/admin/education/" + strconv.Itoa(int(course.ID)))
}

// HandleAdminCourseEdit renders the edit form with the lesson list
func HandleAdminCourseEdit(c *fiber.Ctx) error {
	course, ok := loadAdminCourse(c)
	if !ok {
		return c.Redirect("/admin/education")
	}
	return render(c, "admin/course_form", "Edit course", fiber.Map{
		"Course": course,
		"Tiers":  permissions.AllTiers(),
	})
}

// HandleAdminCourseUpdate applies course edits
func HandleAdminCourseUpdate(c *fiber.Ctx) error {
	course, ok := loadAdminCourse(c)
	if !ok {
		return c.Redirect("/admin/education")
	}
	repo := repository.GetGlobalFactory().GetCourseRepository()

	if title := strings.TrimSpace(c.FormValue("title")); title != "" && title != course.Title {
		course.Title = title
		course.Slug = slugify(title, func(slug string) (bool, error) {
			return repo.SlugExistsExceptID(slug, course.ID)
		})
	}
	course.Description = c.FormValue("description", course.Description)
	if minTier := c.FormValue("min_tier"); minTier != "" {
		if !permissions.Tier(minTier).Valid() {
			fm := fiber.Map{"type": "error", "message": "Unknown tier"}
			return flash.WithError(c, fm).Redirect("/admin/education/" + strconv.Itoa(int(course.ID)))
		}
		course.MinTier = minTier
	}
	course.Published = c.FormValue("published") == "on"
	if order, err := strconv.Atoi(c.FormValue("sort_order")); err == nil {
		course.SortOrder = order
	}

	if err := repo.Update(course); err != nil {
		fm := fiber.Map{"type": "error", "message": "Course could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/education/" + strconv.Itoa(int(course.ID)))
	}

	fm := fiber.Map{"type": "success", "message": "Course saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/education/" + strconv.Itoa(int(course.ID)))
}

// HandleAdminCourseDelete soft-deletes a course
func HandleAdminCourseDelete(c *fiber.Ctx) error {
	course, ok := loadAdminCourse(c)
	if !ok {
		return c.Redirect("/admin/education")
	}

	if err := repository.GetGlobalFactory().GetCourseRepository().Delete(course.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": "Course could not be deleted"}
		return flash.WithError(c, fm).Redirect("/admin/education")
	}

	fm := fiber.Map{"type": "success", "message": "Course deleted."}
	return flash.WithSuccess(c, fm).Redirect("/admin/education")
}

// HandleAdminLessonSave creates or updates a lesson within a course
func HandleAdminLessonSave(c *fiber.Ctx) error {
	course, ok := loadAdminCourse(c)
	if !ok {
		return c.Redirect("/admin/education")
	}
	repo := repository.GetGlobalFactory().GetCourseRepository()
	back := "/admin/education/" + strconv.Itoa(int(course.ID))

	lesson := &models.Lesson{CourseID: course.ID}
	if lessonID, err := strconv.ParseUint(c.FormValue("lesson_id", "0"), 10, 64); err == nil && lessonID > 0 {
		existing, err := repo.GetLesson(course.ID, uint(lessonID))
		if err != nil {
			fm := fiber.Map{"type": "error", "message": "Lesson not found"}
			return flash.WithError(c, fm).Redirect(back)
		}
		lesson = existing
	}

	lesson.Title = strings.TrimSpace(c.FormValue("title"))
	if lesson.Title == "" {
		fm := fiber.Map{"type": "error", "message": "Lesson title is required."}
		return flash.WithError(c, fm).Redirect(back)
	}
	lesson.Content = c.FormValue("content")
	lesson.VideoURL = c.FormValue("video_url")
	if order, err := strconv.Atoi(c.FormValue("sort_order", "0")); err == nil {
		lesson.SortOrder = order
	}

	if err := repo.SaveLesson(lesson); err != nil {
		fm := fiber.Map{"type": "error", "message": "Lesson could not be saved"}
		return flash.WithError(c, fm).Redirect(back)
	}

	fm := fiber.Map{"type": "success", "message": "Lesson saved."}
	return flash.WithSuccess(c, fm).Redirect(back)
}

// HandleAdminLessonDelete removes a lesson from a course
func HandleAdminLessonDelete(c *fiber.Ctx) error {
	course, ok := loadAdminCourse(c)
	if !ok {
		return c.Redirect("/admin/education")
	}
	back := "/admin/education/" + strconv.Itoa(int(course.ID))

	lessonID, err := strconv.ParseUint(c.Params("lesson"), 10, 64)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Lesson not found"}
		return flash.WithError(c, fm).Redirect(back)
	}
	repo := repository.GetGlobalFactory().GetCourseRepository()
	if _, err := repo.GetLesson(course.ID, uint(lessonID)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Lesson not found"}
		return flash.WithError(c, fm).Redirect(back)
	}
	if err := repo.DeleteLesson(uint(lessonID)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Lesson could not be deleted"}
		return flash.WithError(c, fm).Redirect(back)
	}

	fm := fiber.Map{"type": "success", "message": "Lesson deleted."}
	return flash.WithSuccess(c, fm).Redirect(back)
}

func loadAdminCourse(c *fiber.Ctx) (*models.Course, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return nil, false
	}
	course, err := repository.GetGlobalFactory().GetCourseRepository().GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return nil, false
	}
	return course, true
}

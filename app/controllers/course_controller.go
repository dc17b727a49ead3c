package controllers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/entitlements"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

// courseListing pairs a course with whether the current member can open it.
type courseListing struct {
	Course     models.Course
	Accessible bool
}

// HandleCourseIndex lists published courses, marking which ones the member's
// tier unlocks.
func HandleCourseIndex(c *fiber.Ctx) error {
	courses, err := repository.GetGlobalFactory().GetCourseRepository().GetPublished()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load courses")
	}

	view := permissionView(c)
	listings := make([]courseListing, 0, len(courses))
	for _, course := range courses {
		listings = append(listings, courseListing{
			Course:     course,
			Accessible: entitlements.CanAccessCourse(view, &course),
		})
	}

	return render(c, "course/index", "Education", fiber.Map{
		"Courses": listings,
	})
}

// HandleCourseShow renders a course with its lessons, gated on the course tier
func HandleCourseShow(c *fiber.Ctx) error {
	slug := c.Params("slug")

	course, err := repository.GetGlobalFactory().GetCourseRepository().GetBySlug(slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Course not found")
	}

	view := permissionView(c)
	if !entitlements.CanAccessCourse(view, course) {
		fm := fiber.Map{
			"type":    "info",
			"message": "This course requires a higher membership tier.",
		}
		return flash.WithInfo(c, fm).Redirect("/pricing")
	}

	return render(c, "course/show", course.Title, fiber.Map{
		"Course": course,
	})
}

// HandleLessonShow renders a single lesson inside its course
func HandleLessonShow(c *fiber.Ctx) error {
	slug := c.Params("slug")

	repo := repository.GetGlobalFactory().GetCourseRepository()
	course, err := repo.GetBySlug(slug)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Course not found")
	}

	view := permissionView(c)
	if !entitlements.CanAccessCourse(view, course) {
		fm := fiber.Map{
			"type":    "info",
			"message": "This course requires a higher membership tier.",
		}
		return flash.WithInfo(c, fm).Redirect("/pricing")
	}

	lessonID, err := c.ParamsInt("lesson")
	if err != nil {
		return c.Redirect("/education/" + course.Slug)
	}
	lesson, err := repo.GetLesson(course.ID, uint(lessonID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Lesson not found")
	}

	return render(c, "course/lesson", lesson.Title, fiber.Map{
		"Course":      course,
		"Lesson":      lesson,
		"ContentHTML": template.HTML(utils.ProcessHTMLContent(lesson.Content)),
	})
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/controllers"
	"github.com/tradewindhq/tradewind/internal/pkg/middleware"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)

	// User management
	users := adminGroup.Group("/users", middleware.RequireAdminCapability(permissions.CapManageUsers))
	users.Get("/", controllers.HandleAdminUsers)
	users.Get("/:id", controllers.HandleAdminUserEdit)
	users.Post("/:id", controllers.HandleAdminUserUpdate)
	users.Post("/:id/capabilities", controllers.HandleAdminUserCapabilities)

	// Alert management; create/edit/delete carry separate capabilities
	adminGroup.Get("/alerts", controllers.HandleAdminAlerts)
	adminGroup.Get("/alerts/new", middleware.RequireAdminCapability(permissions.CapCreateAlerts), controllers.HandleAdminAlertNew)
	adminGroup.Post("/alerts", middleware.RequireAdminCapability(permissions.CapCreateAlerts), controllers.HandleAdminAlertCreate)
	adminGroup.Get("/alerts/:id", middleware.RequireAdminCapability(permissions.CapEditAlerts), controllers.HandleAdminAlertEdit)
	adminGroup.Post("/alerts/:id", middleware.RequireAdminCapability(permissions.CapEditAlerts), controllers.HandleAdminAlertUpdate)
	adminGroup.Post("/alerts/:id/publish", middleware.RequireAdminCapability(permissions.CapEditAlerts), controllers.HandleAdminAlertPublish)
	adminGroup.Post("/alerts/:id/delete", middleware.RequireAdminCapability(permissions.CapDeleteAlerts), controllers.HandleAdminAlertDelete)

	// News management
	news := adminGroup.Group("/news", middleware.RequireAdminCapability(permissions.CapManageContent))
	news.Get("/", controllers.HandleAdminNews)
	news.Get("/new", controllers.HandleAdminNewsNew)
	news.Post("/", controllers.HandleAdminNewsCreate)
	news.Get("/:id", controllers.HandleAdminNewsEdit)
	news.Post("/:id", controllers.HandleAdminNewsUpdate)
	news.Post("/:id/delete", controllers.HandleAdminNewsDelete)

	// Education management
	education := adminGroup.Group("/education", middleware.RequireAdminCapability(permissions.CapManageEducation))
	education.Get("/", controllers.HandleAdminCourses)
	education.Get("/new", controllers.HandleAdminCourseNew)
	education.Post("/", controllers.HandleAdminCourseCreate)
	education.Get("/:id", controllers.HandleAdminCourseEdit)
	education.Post("/:id", controllers.HandleAdminCourseUpdate)
	education.Post("/:id/delete", controllers.HandleAdminCourseDelete)
	education.Post("/:id/lessons", controllers.HandleAdminLessonSave)
	education.Post("/:id/lessons/:lesson/delete", controllers.HandleAdminLessonDelete)

	// Coaching scheduling
	coaching := adminGroup.Group("/coaching", middleware.RequireAdminCapability(permissions.CapManageCoaching))
	coaching.Get("/", controllers.HandleAdminCoaching)
	coaching.Post("/:id/schedule", controllers.HandleAdminCoachingSchedule)
	coaching.Post("/:id/complete", controllers.HandleAdminCoachingComplete)

	// Analytics
	adminGroup.Get("/analytics", middleware.RequireAdminCapability(permissions.CapViewAnalytics), controllers.HandleAdminAnalytics)
}

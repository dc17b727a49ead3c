package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/tradewindhq/tradewind/app/controllers"
	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/middleware"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleHome)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)
	group.Post("/activate", loggedInMiddleware, controllers.HandleAuthActivate)

	// Member pages
	group.Get("/user/profile", middleware.RequireAuth, controllers.HandleUserProfile)
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings/notifications", middleware.RequireAuth, controllers.HandleUserNotificationUpdate)
	group.Post("/user/settings/avatar", middleware.RequireAuth, controllers.HandleUserAvatarUpload)
	group.Post("/user/settings/api-key", middleware.RequireAuth, controllers.HandleUserAPIKeyGenerate)
	group.Post("/user/settings/api-key/revoke", middleware.RequireAuth, controllers.HandleUserAPIKeyRevoke)
	group.Get("/user/settings/membership", middleware.RequireAuth, controllers.HandleUserMembership)
	group.Post("/user/settings/membership/resync", middleware.RequireAuth, controllers.HandleMembershipResync)
	group.Get("/user/notifications", middleware.RequireAuth, controllers.HandleUserNotifications)

	// Checkout landing; the webhook writes the tier, this refreshes the session
	group.Get("/checkout/success", middleware.RequireAuth, controllers.HandleCheckoutSuccess)

	// Paper portfolio, paid tier and up
	portfolio := group.Group("/portfolio", middleware.RequireAuth, middleware.RequireTier(permissions.TierPaid))
	portfolio.Get("/", controllers.HandlePortfolioIndex)
	portfolio.Post("/", controllers.HandlePortfolioCreate)
	portfolio.Post("/:id/close", controllers.HandlePortfolioClose)
	portfolio.Post("/:id/delete", controllers.HandlePortfolioDelete)

	// Education; per-course tiers are enforced in the controllers
	group.Get("/education", loggedInMiddleware, controllers.HandleCourseIndex)
	group.Get("/education/:slug", middleware.RequireAuth, controllers.HandleCourseShow)
	group.Get("/education/:slug/lessons/:lesson", middleware.RequireAuth, controllers.HandleLessonShow)

	// Coaching
	group.Get("/coaching", loggedInMiddleware, controllers.HandleCoachingIndex)

	// Admin settings live here for the CSRF-protected form
	group.Get("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettings)
	group.Post("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettingsUpdate)
}

package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/tradewindhq/tradewind/app/controllers"
	"github.com/tradewindhq/tradewind/internal/pkg/constants"
	"github.com/tradewindhq/tradewind/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Public content
	app.Get("/news", loggedInMiddleware, controllers.HandleNewsIndex)
	app.Get("/news/:slug", loggedInMiddleware, controllers.HandleNewsShow)
	app.Get("/pricing", loggedInMiddleware, controllers.HandlePricing)

	// Alert pages; tier filtering happens inside the controllers
	app.Get("/alerts", loggedInMiddleware, controllers.HandleAlertList)
	app.Get("/alerts/:uuid", loggedInMiddleware, controllers.HandleAlertShow)

	// Short share URLs
	app.Get("/a/:code", loggedInMiddleware, controllers.HandleAlertShareRedirect)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Stripe webhook (no CSRF, signature-verified in controller)
	app.Post(constants.WebhookRoute, controllers.HandleStripeWebhook)
}

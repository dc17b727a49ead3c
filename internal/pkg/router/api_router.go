package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/tradewindhq/tradewind/app/controllers"
	apiv1 "github.com/tradewindhq/tradewind/internal/api/v1"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Stripe checkout; the webhook is registered separately without the limiter
	stripe := api.Group("/stripe")
	stripe.Post("/create-checkout-session", controllers.HandleCreateCheckoutSession)
	stripe.Post("/create-coaching-checkout", controllers.HandleCreateCoachingCheckout)

	// Realtime market data
	api.Get("/stream/token", controllers.HandleStreamToken)
	api.Get("/stream", controllers.HandleStreamFeed)
	api.Get("/quotes/:symbol", controllers.HandleQuote)

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

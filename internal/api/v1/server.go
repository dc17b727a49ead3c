package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/internal/pkg/middleware"
)

// ServerInterface lists the operations of the v1 API, mirroring
// public/docs/v1/openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetUserProfile(c *fiber.Ctx) error
	GetAlerts(c *fiber.Ctx) error
	GetAlert(c *fiber.Ctx, uuid string) error
	GetQuote(c *fiber.Ctx, symbol string) error
}

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// RegisterHandlers attaches the v1 routes to the given router. Everything
// except ping requires an API key.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)

	protected := router.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/user/profile", si.GetUserProfile)
	protected.Get("/alerts", si.GetAlerts)
	protected.Get("/alerts/:uuid", func(c *fiber.Ctx) error {
		return si.GetAlert(c, c.Params("uuid"))
	})
	protected.Get("/quotes/:symbol", func(c *fiber.Ctx) error {
		return si.GetQuote(c, c.Params("symbol"))
	})
}

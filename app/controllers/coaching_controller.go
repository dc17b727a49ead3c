package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

// HandleCoachingIndex renders the coaching offering and the member's
// purchase history.
func HandleCoachingIndex(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var purchases interface{}
	if userCtx.IsLoggedIn {
		list, err := repository.GetGlobalFactory().GetCoachingRepository().GetByUserID(userCtx.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load purchases")
		}
		purchases = list
	}

	view := permissionView(c)

	return render(c, "coaching/index", "Coaching", fiber.Map{
		"Purchases":       purchases,
		"CoachingPriceID": env.GetEnv("STRIPE_PRICE_COACHING", ""),
		"CanBookSessions": permissions.HasFeaturePermission(view, permissions.PermCoachingBooking),
	})
}

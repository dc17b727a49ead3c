package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/statistics"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

// HandleHome renders the landing page with site statistics and the newest
// alerts visible at the visitor's tier.
func HandleHome(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	stats := statistics.GetStatisticsData()

	// Anonymous visitors see the free teaser alerts
	tiers := []string{string(permissions.TierFree)}
	if userCtx.IsLoggedIn {
		view := &permissions.User{Tier: permissions.Tier(userCtx.Tier), IsAdmin: userCtx.IsAdmin}
		tiers = visibleTiers(view)
	}

	alerts, err := repository.GetGlobalFactory().GetAlertRepository().GetRecent(tiers, 5)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alerts")
	}

	return render(c, "home", "", fiber.Map{
		"Stats":        stats,
		"RecentAlerts": alerts,
	})
}

// HandlePricing renders the tier comparison page
func HandlePricing(c *fiber.Ctx) error {
	return render(c, "pricing", "Pricing", fiber.Map{
		"Tiers": permissions.AllTiers(),
	})
}

package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/entitlements"
	"github.com/tradewindhq/tradewind/internal/pkg/metrics/counter"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/shortener"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

const alertsPerPage = 25

// visibleTiers resolves which alert min-tier values the current view covers.
func visibleTiers(view *permissions.User) []string {
	return entitlements.VisibleAlertTiers(view)
}

func permissionView(c *fiber.Ctx) *permissions.User {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return &permissions.User{Tier: permissions.TierFree}
	}
	return &permissions.User{
		Tier:      permissions.Tier(userCtx.Tier),
		IsAdmin:   userCtx.IsAdmin,
		AdminRole: permissions.AdminRole(userCtx.AdminRole),
	}
}

// HandleAlertList renders the alert feed filtered to the member's tier
func HandleAlertList(c *fiber.Ctx) error {
	view := permissionView(c)
	tiers := visibleTiers(view)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * alertsPerPage

	repo := repository.GetGlobalFactory().GetAlertRepository()
	alerts, err := repo.GetPublished(tiers, offset, alertsPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alerts")
	}
	total, err := repo.CountPublished(tiers)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alerts")
	}

	return render(c, "alert/index", "Alerts", fiber.Map{
		"Alerts":      alerts,
		"Page":        page,
		"HasNextPage": int64(page*alertsPerPage) < total,
		"CanSeePaid":  permissions.HasFeaturePermission(view, permissions.PermViewAlerts),
	})
}

// HandleAlertShow renders a single alert, gated on its minimum tier
func HandleAlertShow(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Redirect("/alerts")
	}

	repo := repository.GetGlobalFactory().GetAlertRepository()
	alert, err := repo.GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Alert not found")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alert")
	}

	view := permissionView(c)
	if !alert.Published && !view.IsAdmin {
		return c.Status(fiber.StatusNotFound).SendString("Alert not found")
	}
	if !permissions.HasTierAccess(view, permissions.Tier(alert.MinTier)) {
		fm := fiber.Map{
			"type":    "info",
			"message": "This alert requires a higher membership tier.",
		}
		return flash.WithInfo(c, fm).Redirect("/pricing")
	}

	// View counting is buffered in Redis and flushed periodically
	if err := counter.AddAlertView(alert.ID); err != nil {
		log.Debugf("alert view counter failed: %v", err)
	}

	return render(c, "alert/show", alert.Title, fiber.Map{
		"Alert":     alert,
		"ShareCode": shortener.EncodeID(alert.ID),
	})
}

// HandleAlertShareRedirect resolves a short share code to the alert page
func HandleAlertShareRedirect(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Redirect("/alerts")
	}

	id := shortener.DecodeID(code)
	if id == 0 {
		return c.Status(fiber.StatusNotFound).SendString("Unknown share link")
	}

	alert, err := repository.GetGlobalFactory().GetAlertRepository().GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Unknown share link")
	}

	return c.Redirect("/alerts/"+alert.UUID, fiber.StatusSeeOther)
}

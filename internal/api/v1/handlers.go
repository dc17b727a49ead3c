package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/entitlements"
	"github.com/tradewindhq/tradewind/internal/pkg/marketdata"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

const apiAlertsPerPage = 50

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account and membership information for the
// authenticated user. Security is enforced via the API key middleware.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "profile_lookup_failed"})
	}

	return c.JSON(fiber.Map{
		"id":                  user.ID,
		"name":                user.Name,
		"email":               user.Email,
		"tier":                profile.Tier,
		"notify_alert_emails": profile.NotifyAlertEmails,
		"created_at":          user.CreatedAt,
	})
}

// GetAlerts lists published alerts visible to the caller's tier
func (s *APIServer) GetAlerts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	tiers := entitlements.VisibleAlertTiers(apiPermissionView(c))
	repo := repository.GetGlobalFactory().GetAlertRepository()
	alerts, err := repo.GetPublished(tiers, (page-1)*apiAlertsPerPage, apiAlertsPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "alert_lookup_failed"})
	}
	total, _ := repo.CountPublished(tiers)

	return c.JSON(fiber.Map{
		"alerts": alerts,
		"page":   page,
		"total":  total,
	})
}

// GetAlert returns a single published alert by UUID. Alerts above the
// caller's tier return 403 rather than leaking their levels.
func (s *APIServer) GetAlert(c *fiber.Ctx, uuid string) error {
	alert, err := repository.GetGlobalFactory().GetAlertRepository().GetByUUID(uuid)
	if err != nil || !alert.Published {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	view := apiPermissionView(c)
	if !permissions.HasTierAccess(view, permissions.Tier(alert.MinTier)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required"})
	}

	return c.JSON(alert)
}

// GetQuote returns the latest cached quote for a symbol
func (s *APIServer) GetQuote(c *fiber.Ctx, symbol string) error {
	view := apiPermissionView(c)
	if !permissions.HasFeaturePermission(view, permissions.PermLiveQuotes) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required"})
	}

	normalized := utils.NormalizeSymbol(symbol)
	if normalized == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_symbol"})
	}

	quote, err := marketdata.GetCachedQuote(normalized)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no_quote"})
	}

	return c.JSON(quote)
}

// apiPermissionView builds the permission resolver view from the context the
// API key middleware stored.
func apiPermissionView(c *fiber.Ctx) *permissions.User {
	userCtx := usercontext.GetUserContext(c)
	return &permissions.User{
		Tier:      permissions.Tier(userCtx.Tier),
		IsAdmin:   userCtx.IsAdmin,
		AdminRole: permissions.AdminRole(userCtx.AdminRole),
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyFromProtected)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAdmin ensures a logged-in admin; redirects otherwise.
func RequireAdmin(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyFromProtected)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if isAdmin, ok := c.Locals(usercontext.KeyIsAdmin).(bool); !ok || !isAdmin {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyFromProtected)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireTier gates a route behind a minimum membership tier. Anonymous
// visitors are sent to /login, under-tiered members to the membership page.
func RequireTier(required permissions.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		if !ctx.IsLoggedIn {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		view := &permissions.User{Tier: permissions.Tier(ctx.Tier), IsAdmin: ctx.IsAdmin}
		if !permissions.HasTierAccess(view, required) {
			return c.Redirect("/pricing", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequireFeature gates a route behind a feature permission resolved from the
// session tier.
func RequireFeature(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		if !ctx.IsLoggedIn {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		view := &permissions.User{Tier: permissions.Tier(ctx.Tier), IsAdmin: ctx.IsAdmin}
		if !permissions.HasFeaturePermission(view, permission) {
			return c.Redirect("/pricing", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequireAdminCapability gates an admin route behind a single capability.
// super_admin passes everything; other admins need the stored flag.
func RequireAdminCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		if !ctx.IsLoggedIn {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		if !ctx.IsAdmin {
			return c.Redirect("/", fiber.StatusSeeOther)
		}

		view := &permissions.User{
			Tier:      permissions.Tier(ctx.Tier),
			IsAdmin:   true,
			AdminRole: permissions.AdminRole(ctx.AdminRole),
		}
		// super_admin needs no capability row
		if view.AdminRole != permissions.RoleSuperAdmin {
			db := database.GetDB()
			if db == nil {
				return c.Status(fiber.StatusInternalServerError).SendString("database unavailable")
			}
			ap, err := models.GetOrCreateAdminPermissions(db, ctx.UserID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("capability lookup failed")
			}
			view.AdminPermissions = ap.AsMap()
		}

		if !permissions.HasAdminCapability(view, capability) {
			return c.Status(fiber.StatusForbidden).SendString("missing capability")
		}
		return c.Next()
	}
}

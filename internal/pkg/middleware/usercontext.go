package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/session"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// It resolves the membership tier once per session so permission checks on
// individual routes stay free of database round trips.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		setAnonymousContext(c)
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		setAnonymousContext(c)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUserName)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Tier resolution with session-first strategy
	tier := session.GetSessionValue(c, "user_tier")
	adminRole := session.GetSessionValue(c, "admin_role")
	if tier == "" {
		tier = "free"
		if db := database.GetDB(); db != nil {
			if profile, err := models.GetOrCreateProfile(db, userID.(uint)); err == nil && profile != nil {
				if profile.Tier != "" {
					tier = profile.Tier
				}
				adminRole = profile.AdminRole
			}
		}
		// cache in session for subsequent requests
		_ = session.SetSessionValue(c, "user_tier", tier)
		_ = session.SetSessionValue(c, "admin_role", adminRole)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Tier:       tier,
		AdminRole:  adminRole,
	}
	c.Locals(usercontext.KeyUserContext, userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserName, username)
	c.Locals(usercontext.KeyUserID, userID.(uint))
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	// Store username in user's individual session (multi-user safe)
	session.SetSessionValue(c, usercontext.KeyUserName, username)

	return c.Next()
}

func setAnonymousContext(c *fiber.Ctx) {
	c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
}

package controllers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/marketdata"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/security"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

const streamTokenTTL = 15 * time.Minute

// HandleStreamToken issues a short-lived token for the realtime quote stream
func HandleStreamToken(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	view := permissionView(c)
	if !permissions.HasFeaturePermission(view, permissions.PermRealtimeStream) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required"})
	}

	token, err := security.GenerateStreamToken(
		userCtx.UserID, userCtx.Tier, streamTokenTTL,
		env.GetEnv("STREAM_TOKEN_SECRET", ""),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "token_generation_failed"})
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_in": int(streamTokenTTL.Seconds()),
	})
}

// HandleStreamFeed relays live quotes as server-sent events. Access runs on
// the short-lived token from HandleStreamToken, passed as a query parameter
// because EventSource cannot set request headers. The stream closes when the
// token expires; clients reconnect with a fresh one.
func HandleStreamFeed(c *fiber.Ctx) error {
	claims, err := security.VerifyStreamToken(c.Query("token"), env.GetEnv("STREAM_TOKEN_SECRET", ""))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_token"})
	}

	view := permissions.User{Tier: permissions.Tier(claims.Tier)}
	if !permissions.HasFeaturePermission(&view, permissions.PermRealtimeStream) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required"})
	}

	var symbols []string
	for _, raw := range strings.Split(c.Query("symbols"), ",") {
		if s := utils.NormalizeSymbol(raw); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_symbols"})
	}

	feed := marketdata.Default()
	if feed == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "feed_unavailable"})
	}

	quotes, cancel := feed.Subscribe(symbols...)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	tokenExpiry := time.Until(time.Unix(claims.ExpiresAt, 0))
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		expired := time.NewTimer(tokenExpiry)
		defer expired.Stop()

		for {
			select {
			case q, ok := <-quotes:
				if !ok {
					return
				}
				payload, err := json.Marshal(q)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// client went away
					return
				}
			case <-expired.C:
				fmt.Fprint(w, "event: expired\ndata: {}\n\n")
				_ = w.Flush()
				return
			}
		}
	})
	return nil
}

// HandleQuote returns the latest cached quote for a symbol
func HandleQuote(c *fiber.Ctx) error {
	view := permissionView(c)
	if !permissions.HasFeaturePermission(view, permissions.PermLiveQuotes) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required"})
	}

	symbol := utils.NormalizeSymbol(c.Params("symbol"))
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_symbol"})
	}

	quote, err := marketdata.GetCachedQuote(symbol)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no_quote"})
	}

	return c.JSON(quote)
}

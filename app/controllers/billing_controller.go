package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/billing"
	"github.com/tradewindhq/tradewind/internal/pkg/constants"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/env"
	"github.com/tradewindhq/tradewind/internal/pkg/jobqueue"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/session"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

func billingService() *billing.Service {
	client := billing.NewClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
	return billing.NewServiceFromDB(database.GetDB(), client, billing.LoadPriceTable())
}

type checkoutRequest struct {
	Tier    string `json:"tier"`
	PriceID string `json:"price_id"`
}

// HandleCreateCheckoutSession opens a subscription checkout for a paid tier
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}
	tier := permissions.Tier(req.Tier)
	if tier.Rank() <= permissions.TierFree.Rank() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_tier"})
	}

	user, err := loadSessionUser(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user_lookup_failed"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
	sessionID, err := billingService().CreateTierCheckout(
		ctx, userCtx.UserID, user.Email, tier,
		base+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		base+"/pricing",
	)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownTier) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_tier"})
		}
		log.Error().Err(err).Uint("user_id", userCtx.UserID).Msg("tier checkout failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_failed"})
	}

	return c.JSON(fiber.Map{"sessionId": sessionID})
}

// HandleCreateCoachingCheckout opens a one-off payment checkout for coaching
func HandleCreateCoachingCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}
	priceID := req.PriceID
	if priceID == "" {
		priceID = env.GetEnv("STRIPE_PRICE_COACHING", "")
	}
	if priceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_price"})
	}

	user, err := loadSessionUser(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user_lookup_failed"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
	sessionID, err := billingService().CreateCoachingCheckout(
		ctx, userCtx.UserID, user.Email, priceID,
		base+"/coaching?status=success",
		base+"/coaching",
	)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userCtx.UserID).Msg("coaching checkout failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_failed"})
	}

	return c.JSON(fiber.Map{"sessionId": sessionID})
}

// HandleStripeWebhook verifies, records and processes incoming Stripe events.
// Replays short-circuit as duplicates via the webhook event ledger.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	stripeEvent, err := billing.VerifyWebhookSignature(rawBody, signature, secret)
	if err != nil {
		log.Warn().Err(err).Msg("stripe webhook signature rejected")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: stripeEvent.ID,
		EventType:       string(stripeEvent.Type),
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		if !stored.NeedsReprocessing() {
			return c.JSON(fiber.Map{"received": true, "duplicate": true})
		}
		// Stripe redelivers with the same event id after our 500; a delivery
		// whose first processing failed must run again, not dedupe away.
		log.Info().Str("event_id", stripeEvent.ID).Msg("reprocessing previously failed webhook delivery")
	}

	parsed, err := billing.ParseEvent(&stripeEvent)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	processErr := svc.ProcessEvent(ctx, parsed)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, processErr)
	if processErr != nil {
		// Missing user metadata is unprocessable, not retryable; everything
		// else surfaces so Stripe redelivers.
		if errors.Is(processErr, billing.ErrMissingUserID) {
			log.Warn().Str("event_id", stripeEvent.ID).Msg("webhook customer has no user_id metadata")
			return c.JSON(fiber.Map{"received": true, "unprocessable": true})
		}
		log.Error().Err(processErr).Str("event_id", stripeEvent.ID).Msg("webhook processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_failed"})
	}

	// Best-effort audit archival via the job queue
	if err := jobqueue.EnqueueWebhookArchive(stored.ID, billing.ProviderStripe, stored.ProviderEventID); err != nil {
		log.Warn().Err(err).Msg("webhook archive enqueue failed")
	}

	return c.JSON(fiber.Map{"received": true})
}

// HandleCheckoutSuccess lands the member after a completed Stripe checkout.
// The tier itself is written by the webhook; this just refreshes the session.
func HandleCheckoutSuccess(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID); err == nil {
		_ = session.SetSessionValue(c, "user_tier", profile.Tier)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Payment received. Your membership updates within a few seconds.",
	}
	return flash.WithSuccess(c, fm).Redirect(constants.MembershipPage)
}

// HandleMembershipResync pulls the live subscription state from Stripe,
// reconciles it into the profile and refreshes the session tier.
func HandleMembershipResync(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Membership lookup failed"}
		return flash.WithError(c, fm).Redirect(constants.MembershipPage)
	}

	if profile.StripeCustomerID != "" && profile.StripeSubscriptionID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := billingService().ResyncSubscription(ctx, profile.StripeCustomerID, profile.StripeSubscriptionID); err != nil {
			log.Warn().Err(err).Uint("user_id", userCtx.UserID).Msg("membership resync failed")
			fm := fiber.Map{"type": "error", "message": "Could not reach the billing provider. Please try again."}
			return flash.WithError(c, fm).Redirect(constants.MembershipPage)
		}
		profile, err = models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
		if err != nil {
			fm := fiber.Map{"type": "error", "message": "Membership lookup failed"}
			return flash.WithError(c, fm).Redirect(constants.MembershipPage)
		}
	}

	_ = session.SetSessionValue(c, "user_tier", profile.Tier)
	fm := fiber.Map{
		"type":    "success",
		"message": "Membership refreshed. Current tier: " + profile.Tier,
	}
	return flash.WithSuccess(c, fm).Redirect(constants.MembershipPage)
}

func loadSessionUser(userID uint) (*models.User, error) {
	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

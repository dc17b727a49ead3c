package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	stripelib "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

const ProviderStripe = "stripe"

// ErrMissingUserID marks an event whose customer carries no user_id metadata.
// Such an event can never be attributed to an account; it is surfaced as a
// processing failure rather than silently dropped.
var ErrMissingUserID = errors.New("billing: customer has no user_id metadata")

// ErrUnknownTier rejects checkout requests for tiers without a configured price.
var ErrUnknownTier = errors.New("billing: no price configured for tier")

// Service reconciles Stripe subscription state into profile records and opens
// checkout sessions. All profile writes are full overwrites of the reconciled
// fields, so replayed events converge on the same state.
type Service struct {
	repo   Repository
	stripe *Client
	prices PriceTable
}

// NewService creates a billing service from an injected repository and client.
func NewService(repo Repository, client *Client, prices PriceTable) *Service {
	return &Service{repo: repo, stripe: client, prices: prices}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, client *Client, prices PriceTable) *Service {
	return NewService(NewRepository(db), client, prices)
}

// EnsureCustomer returns the Stripe customer id for a user, creating the
// customer on first use. Read-before-write: once any customer id is observed
// on the profile it is trusted and never replaced, so concurrent first
// checkouts at worst race to create one extra customer that is then ignored.
func (s *Service) EnsureCustomer(ctx context.Context, userID uint, email string) (string, error) {
	profile, err := s.repo.GetOrCreateProfile(userID)
	if err != nil {
		return "", err
	}
	if id := strings.TrimSpace(profile.StripeCustomerID); id != "" {
		return id, nil
	}

	cust, err := s.stripe.CreateCustomer(ctx, email, strconv.FormatUint(uint64(userID), 10))
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.repo.SetStripeCustomerID(userID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateTierCheckout opens a subscription-mode checkout session for a paid tier.
func (s *Service) CreateTierCheckout(ctx context.Context, userID uint, email string, tier permissions.Tier, successURL, cancelURL string) (string, error) {
	priceID := s.prices.PriceForTier(tier)
	if priceID == "" {
		return "", ErrUnknownTier
	}

	customerID, err := s.EnsureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	params := &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		Customer:   stripelib.String(customerID),
		SuccessURL: stripelib.String(successURL),
		CancelURL:  stripelib.String(cancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(priceID),
				Quantity: stripelib.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"tier":    string(tier),
		},
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.ID, nil
}

// CreateCoachingCheckout opens a one-off payment-mode checkout for a coaching
// offering and records the pending purchase row keyed by the session id.
func (s *Service) CreateCoachingCheckout(ctx context.Context, userID uint, email, priceID, successURL, cancelURL string) (string, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", errors.New("billing: price id is required")
	}

	customerID, err := s.EnsureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	params := &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModePayment)),
		Customer:   stripelib.String(customerID),
		SuccessURL: stripelib.String(successURL),
		CancelURL:  stripelib.String(cancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(priceID),
				Quantity: stripelib.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"purpose": "coaching",
		},
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create coaching checkout: %w", err)
	}

	purchase := &models.CoachingPurchase{
		UserID:     userID,
		PriceID:    priceID,
		CheckoutID: session.ID,
		Status:     models.CoachingStatusPending,
	}
	if err := s.repo.CreateCoachingPurchase(purchase); err != nil {
		return "", err
	}
	return session.ID, nil
}

// ProcessEvent routes a parsed event to the coaching or subscription path.
// Checkout sessions in payment mode never touch the tier.
func (s *Service) ProcessEvent(ctx context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}

	switch ev.Kind {
	case EventKindCheckout:
		session := ev.Checkout
		if session.Mode == string(stripelib.CheckoutSessionModePayment) {
			return s.handleCoachingPaid(session)
		}
		return s.reconcileSubscription(ctx, session.Customer, session.Subscription)

	case EventKindSubscription:
		sub := ev.Subscription
		if ev.Type == EventTypeSubscriptionDeleted {
			return s.cancelSubscription(ctx, sub.Customer, sub.ID)
		}
		return s.reconcileSubscription(ctx, sub.Customer, sub.ID)

	case EventKindInvoice:
		inv := ev.Invoice
		if strings.TrimSpace(inv.Subscription) == "" {
			// one-off invoice, nothing to reconcile
			return nil
		}
		return s.reconcileSubscription(ctx, inv.Customer, inv.Subscription)

	default:
		return fmt.Errorf("billing: unhandled event kind %q", ev.Kind)
	}
}

func (s *Service) handleCoachingPaid(session *CheckoutSession) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("billing: checkout session without id")
	}
	return s.repo.MarkCoachingPurchasePaid(session.ID, session.PaymentIntent, session.AmountTotal, session.Currency)
}

// reconcileSubscription resolves the owning user through the customer's
// metadata, reads the purchased price from the subscription and overwrites
// the profile's customer id, subscription id and tier.
func (s *Service) reconcileSubscription(ctx context.Context, customerID, subscriptionID string) error {
	customerID = strings.TrimSpace(customerID)
	subscriptionID = strings.TrimSpace(subscriptionID)
	if customerID == "" || subscriptionID == "" {
		return errors.New("billing: event lacks customer or subscription id")
	}

	userID, err := s.resolveUserID(ctx, customerID)
	if err != nil {
		return err
	}

	sub, err := s.stripe.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	if subscriptionTerminated(sub.Status) {
		if err := s.repo.UpdateProfileSubscription(userID, customerID, "", string(permissions.TierFree)); err != nil {
			return fmt.Errorf("persist cancellation for user %d: %w", userID, err)
		}
		log.Info().
			Uint("user_id", userID).
			Str("subscription_id", subscriptionID).
			Str("status", string(sub.Status)).
			Msg("subscription no longer entitling, tier reset to free")
		return nil
	}
	priceID := firstStripePriceID(sub)

	tier, mapped := s.prices.TierForPrice(priceID)
	if !mapped {
		log.Warn().
			Str("price_id", priceID).
			Str("subscription_id", subscriptionID).
			Uint("user_id", userID).
			Msg("unmapped subscription price, falling back to free tier")
	}

	if err := s.repo.UpdateProfileSubscription(userID, customerID, subscriptionID, string(tier)); err != nil {
		return fmt.Errorf("persist subscription for user %d: %w", userID, err)
	}

	log.Info().
		Uint("user_id", userID).
		Str("customer_id", customerID).
		Str("subscription_id", subscriptionID).
		Str("tier", string(tier)).
		Msg("subscription reconciled")
	return nil
}

// cancelSubscription drops the member back to the free tier. The deleted
// event is authoritative: the subscription is not re-fetched, since Stripe
// keeps returning the last price on canceled subscriptions, which would map
// straight back to the paid tier.
func (s *Service) cancelSubscription(ctx context.Context, customerID, subscriptionID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return errors.New("billing: cancellation event lacks customer id")
	}

	userID, err := s.resolveUserID(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateProfileSubscription(userID, customerID, "", string(permissions.TierFree)); err != nil {
		return fmt.Errorf("persist cancellation for user %d: %w", userID, err)
	}

	log.Info().
		Uint("user_id", userID).
		Str("customer_id", customerID).
		Str("subscription_id", subscriptionID).
		Msg("subscription canceled, tier reset to free")
	return nil
}

// resolveUserID maps a Stripe customer back to the owning user through the
// user_id metadata written at customer creation.
func (s *Service) resolveUserID(ctx context.Context, customerID string) (uint, error) {
	cust, err := s.stripe.GetCustomer(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("retrieve customer %s: %w", customerID, err)
	}
	rawUserID := strings.TrimSpace(cust.Metadata["user_id"])
	if rawUserID == "" {
		return 0, fmt.Errorf("%w: customer %s", ErrMissingUserID, customerID)
	}
	userID64, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: customer %s carries %q", ErrMissingUserID, customerID, rawUserID)
	}
	return uint(userID64), nil
}

// subscriptionTerminated reports whether a live subscription status no longer
// entitles the member to a paid tier. past_due stays entitled: dunning may
// still recover the payment, and a later deleted event closes it out.
func subscriptionTerminated(status stripelib.SubscriptionStatus) bool {
	switch status {
	case stripelib.SubscriptionStatusCanceled,
		stripelib.SubscriptionStatusUnpaid,
		stripelib.SubscriptionStatusIncompleteExpired:
		return true
	}
	return false
}

// ResyncSubscription re-runs reconciliation from the live Stripe state.
// Used by the membership page when a member suspects a missed webhook.
func (s *Service) ResyncSubscription(ctx context.Context, customerID, subscriptionID string) error {
	return s.reconcileSubscription(ctx, customerID, subscriptionID)
}

func firstStripePriceID(sub *stripelib.Subscription) string {
	if sub == nil || sub.Items == nil {
		return ""
	}
	for _, item := range sub.Items.Data {
		if item != nil && item.Price != nil && strings.TrimSpace(item.Price.ID) != "" {
			return item.Price.ID
		}
	}
	return ""
}

// RecordWebhookEvent persists webhook payloads idempotently. The bool result
// is false when the event id was already in the ledger.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

package billing

import (
	"encoding/json"
	"fmt"
	"strings"

	stripelib "github.com/stripe/stripe-go/v82"
)

// EventKind discriminates the two Stripe event shapes the reconciler handles.
// The union is resolved once at the webhook boundary; downstream code switches
// on Kind instead of probing field presence.
type EventKind string

const (
	EventKindCheckout     EventKind = "checkout"
	EventKindSubscription EventKind = "subscription"
	EventKindInvoice      EventKind = "invoice"
)

// Stripe event types the reconciler distinguishes beyond the union kind.
const (
	EventTypeSubscriptionDeleted = "customer.subscription.deleted"
	EventTypeInvoiceFailed       = "invoice.payment_failed"
)

// CheckoutSession is a minimal representation of a Stripe checkout.session event.
type CheckoutSession struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	PaymentIntent   string `json:"payment_intent"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// Subscription is a minimal representation of a Stripe subscription event.
type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			Price struct {
				ID       string            `json:"id"`
				Metadata map[string]string `json:"metadata"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// FirstPriceID returns the price ID from the first subscription item.
func (s *Subscription) FirstPriceID() string {
	for _, item := range s.Items.Data {
		if priceID := strings.TrimSpace(item.Price.ID); priceID != "" {
			return priceID
		}
	}
	return ""
}

// Invoice is a minimal representation of a Stripe invoice event. Only the
// references back to the customer and subscription matter for reconciliation.
type Invoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

// Event is the tagged union handed to the reconciler. Exactly one of the
// payload pointers is non-nil, matching Kind.
type Event struct {
	Kind         EventKind
	ID           string
	Type         string
	Checkout     *CheckoutSession
	Subscription *Subscription
	Invoice      *Invoice
}

// ParseEvent resolves a verified Stripe event into the tagged union. Event
// types the reconciler does not handle return (nil, nil) so the webhook can
// acknowledge them without processing.
func ParseEvent(ev *stripelib.Event) (*Event, error) {
	switch ev.Type {
	case "checkout.session.completed":
		var session CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		return &Event{
			Kind:     EventKindCheckout,
			ID:       ev.ID,
			Type:     string(ev.Type),
			Checkout: &session,
		}, nil

	case "customer.subscription.created", "customer.subscription.updated", EventTypeSubscriptionDeleted:
		var sub Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		return &Event{
			Kind:         EventKindSubscription,
			ID:           ev.ID,
			Type:         string(ev.Type),
			Subscription: &sub,
		}, nil

	case EventTypeInvoiceFailed:
		var inv Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		return &Event{
			Kind:    EventKindInvoice,
			ID:      ev.ID,
			Type:    string(ev.Type),
			Invoice: &inv,
		}, nil

	default:
		return nil, nil
	}
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

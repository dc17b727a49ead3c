package billing

import (
	"context"
	"time"

	stripelib "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeCallTimeout bounds every outbound Stripe API call. The platform's
// delivery retries cover transient failures; we never retry in-process.
const stripeCallTimeout = 15 * time.Second

// Client wraps the Stripe SDK behind injectable call points so tests can run
// without network access.
type Client struct {
	createCustomer        func(params *stripelib.CustomerParams) (*stripelib.Customer, error)
	getCustomer           func(id string, params *stripelib.CustomerParams) (*stripelib.Customer, error)
	getSubscription       func(id string, params *stripelib.SubscriptionParams) (*stripelib.Subscription, error)
	createCheckoutSession func(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
}

// NewClient configures the global Stripe key and returns a client bound to
// the real SDK endpoints.
func NewClient(apiKey string) *Client {
	stripelib.Key = apiKey
	return &Client{
		createCustomer:        customer.New,
		getCustomer:           customer.Get,
		getSubscription:       subscription.Get,
		createCheckoutSession: stripesession.New,
	}
}

// CreateCustomer creates a Stripe customer carrying the owning user id in
// metadata, which is how webhook events find their way back to a profile.
func (c *Client) CreateCustomer(ctx context.Context, email string, userID string) (*stripelib.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	params := &stripelib.CustomerParams{Email: stripelib.String(email)}
	params.Context = ctx
	params.AddMetadata("user_id", userID)
	return c.createCustomer(params)
}

// GetCustomer retrieves a customer by id.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*stripelib.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	params := &stripelib.CustomerParams{}
	params.Context = ctx
	return c.getCustomer(customerID, params)
}

// GetSubscription retrieves a subscription by id, including its line items.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*stripelib.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	params := &stripelib.SubscriptionParams{}
	params.Context = ctx
	return c.getSubscription(subscriptionID, params)
}

// CreateCheckoutSession opens a hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, stripeCallTimeout)
	defer cancel()

	params.Context = ctx
	return c.createCheckoutSession(params)
}

// VerifyWebhookSignature checks the Stripe-Signature header against the raw
// payload and shared secret. API version mismatches are tolerated so SDK
// upgrades do not reject valid events.
func VerifyWebhookSignature(payload []byte, signatureHeader, secret string) (stripelib.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripelib "github.com/stripe/stripe-go/v82"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

type fakeRepo struct {
	profiles  map[uint]*models.Profile
	purchases []*models.CoachingPurchase
	events    map[string]*models.BillingWebhookEvent
	processed map[uint]string
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  make(map[uint]*models.Profile),
		events:    make(map[string]*models.BillingWebhookEvent),
		processed: make(map[uint]string),
	}
}

func (r *fakeRepo) GetOrCreateProfile(userID uint) (*models.Profile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	p := &models.Profile{UserID: userID, Tier: "free", NotifyAlertEmails: true}
	r.profiles[userID] = p
	return p, nil
}

func (r *fakeRepo) SetStripeCustomerID(userID uint, customerID string) error {
	p, _ := r.GetOrCreateProfile(userID)
	p.StripeCustomerID = customerID
	return nil
}

func (r *fakeRepo) UpdateProfileSubscription(userID uint, customerID, subscriptionID, tier string) error {
	p, _ := r.GetOrCreateProfile(userID)
	p.StripeCustomerID = customerID
	p.StripeSubscriptionID = subscriptionID
	p.Tier = tier
	return nil
}

func (r *fakeRepo) CreateCoachingPurchase(purchase *models.CoachingPurchase) error {
	r.purchases = append(r.purchases, purchase)
	return nil
}

func (r *fakeRepo) MarkCoachingPurchasePaid(checkoutID, paymentIntentID string, amountCents int64, currency string) error {
	for _, p := range r.purchases {
		if p.CheckoutID == checkoutID && p.Status == models.CoachingStatusPending {
			p.Status = models.CoachingStatusPaid
			p.PaymentIntentID = paymentIntentID
			p.AmountCents = amountCents
			p.Currency = currency
		}
	}
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := r.events[key]; ok {
		return false, stored, nil
	}
	r.nextID++
	event.ID = r.nextID
	r.events[key] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	r.processed[id] = processingError
	return nil
}

func testClient(customers map[string]*stripelib.Customer, subs map[string]*stripelib.Subscription) *Client {
	created := 0
	return &Client{
		createCustomer: func(params *stripelib.CustomerParams) (*stripelib.Customer, error) {
			created++
			cust := &stripelib.Customer{ID: "cus_new"}
			if created > 1 {
				cust.ID = "cus_dup"
			}
			return cust, nil
		},
		getCustomer: func(id string, params *stripelib.CustomerParams) (*stripelib.Customer, error) {
			if c, ok := customers[id]; ok {
				return c, nil
			}
			return nil, errors.New("no such customer")
		},
		getSubscription: func(id string, params *stripelib.SubscriptionParams) (*stripelib.Subscription, error) {
			if s, ok := subs[id]; ok {
				return s, nil
			}
			return nil, errors.New("no such subscription")
		},
		createCheckoutSession: func(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error) {
			return &stripelib.CheckoutSession{ID: "cs_test"}, nil
		},
	}
}

func stripeSub(priceID string) *stripelib.Subscription {
	return &stripelib.Subscription{
		Items: &stripelib.SubscriptionItemList{
			Data: []*stripelib.SubscriptionItem{
				{Price: &stripelib.Price{ID: priceID}},
			},
		},
	}
}

func stripeCustomer(userID string) *stripelib.Customer {
	return &stripelib.Customer{ID: "cus_1", Metadata: map[string]string{"user_id": userID}}
}

func testPrices() PriceTable {
	return NewPriceTable("price_paid", "price_premium", "price_mentorship")
}

func TestEnsureCustomerCreatesOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testClient(nil, nil), testPrices())

	id, err := svc.EnsureCustomer(context.Background(), 1, "a@b.test")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", id)

	// second call observes the stored id and never creates another customer
	id, err = svc.EnsureCustomer(context.Background(), 1, "a@b.test")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", id)
}

func TestCreateTierCheckoutUnknownTier(t *testing.T) {
	svc := NewService(newFakeRepo(), testClient(nil, nil), testPrices())

	_, err := svc.CreateTierCheckout(context.Background(), 1, "a@b.test", "platinum", "https://ok", "https://no")
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = svc.CreateTierCheckout(context.Background(), 1, "a@b.test", permissions.TierFree, "https://ok", "https://no")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestCreateCoachingCheckoutRecordsPendingPurchase(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testClient(nil, nil), testPrices())

	sessionID, err := svc.CreateCoachingCheckout(context.Background(), 7, "a@b.test", "price_coaching", "https://ok", "https://no")
	require.NoError(t, err)
	assert.Equal(t, "cs_test", sessionID)

	require.Len(t, repo.purchases, 1)
	assert.Equal(t, uint(7), repo.purchases[0].UserID)
	assert.Equal(t, models.CoachingStatusPending, repo.purchases[0].Status)
	assert.Equal(t, "cs_test", repo.purchases[0].CheckoutID)
}

func subscriptionCreatedEvent() *Event {
	return &Event{
		Kind: EventKindSubscription,
		ID:   "evt_1",
		Type: "customer.subscription.created",
		Subscription: &Subscription{
			ID:       "sub_1",
			Customer: "cus_1",
			Status:   "active",
		},
	}
}

func TestProcessEventSubscriptionCreated(t *testing.T) {
	repo := newFakeRepo()
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": stripeSub("price_premium")},
	)
	svc := NewService(repo, client, testPrices())

	require.NoError(t, svc.ProcessEvent(context.Background(), subscriptionCreatedEvent()))

	p := repo.profiles[42]
	require.NotNil(t, p)
	assert.Equal(t, "premium", p.Tier)
	assert.Equal(t, "cus_1", p.StripeCustomerID)
	assert.Equal(t, "sub_1", p.StripeSubscriptionID)
}

func TestProcessEventIdempotent(t *testing.T) {
	repo := newFakeRepo()
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": stripeSub("price_paid")},
	)
	svc := NewService(repo, client, testPrices())

	checkout := &Event{
		Kind: EventKindCheckout,
		ID:   "evt_2",
		Type: "checkout.session.completed",
		Checkout: &CheckoutSession{
			ID:           "cs_1",
			Mode:         "subscription",
			Customer:     "cus_1",
			Subscription: "sub_1",
		},
	}

	require.NoError(t, svc.ProcessEvent(context.Background(), checkout))
	first := *repo.profiles[42]

	require.NoError(t, svc.ProcessEvent(context.Background(), checkout))
	assert.Equal(t, first, *repo.profiles[42])
}

func TestProcessEventPaymentModeNeverTouchesTier(t *testing.T) {
	repo := newFakeRepo()
	profile, _ := repo.GetOrCreateProfile(9)
	profile.Tier = "premium"
	repo.purchases = append(repo.purchases, &models.CoachingPurchase{
		UserID:     9,
		CheckoutID: "cs_pay",
		Status:     models.CoachingStatusPending,
	})
	svc := NewService(repo, testClient(nil, nil), testPrices())

	ev := &Event{
		Kind: EventKindCheckout,
		ID:   "evt_3",
		Type: "checkout.session.completed",
		Checkout: &CheckoutSession{
			ID:            "cs_pay",
			Mode:          "payment",
			PaymentIntent: "pi_1",
			AmountTotal:   15000,
			Currency:      "usd",
		},
	}

	require.NoError(t, svc.ProcessEvent(context.Background(), ev))

	assert.Equal(t, "premium", repo.profiles[9].Tier)
	assert.Equal(t, models.CoachingStatusPaid, repo.purchases[0].Status)
	assert.Equal(t, "pi_1", repo.purchases[0].PaymentIntentID)
	assert.Equal(t, int64(15000), repo.purchases[0].AmountCents)
}

func TestProcessEventSubscriptionDeletedResetsTierToFree(t *testing.T) {
	repo := newFakeRepo()
	profile, _ := repo.GetOrCreateProfile(42)
	profile.Tier = "premium"
	profile.StripeCustomerID = "cus_1"
	profile.StripeSubscriptionID = "sub_1"

	// Stripe keeps serving the canceled subscription with its old price;
	// the cancellation must not be reconciled back into a paid tier from it.
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": stripeSub("price_premium")},
	)
	svc := NewService(repo, client, testPrices())

	ev := &Event{
		Kind: EventKindSubscription,
		ID:   "evt_del",
		Type: EventTypeSubscriptionDeleted,
		Subscription: &Subscription{
			ID:       "sub_1",
			Customer: "cus_1",
			Status:   "canceled",
		},
	}
	require.NoError(t, svc.ProcessEvent(context.Background(), ev))

	p := repo.profiles[42]
	assert.Equal(t, "free", p.Tier)
	assert.Empty(t, p.StripeSubscriptionID)
	assert.Equal(t, "cus_1", p.StripeCustomerID)
}

func TestProcessEventInvoiceFailedOnDeadSubscription(t *testing.T) {
	repo := newFakeRepo()
	profile, _ := repo.GetOrCreateProfile(42)
	profile.Tier = "paid"

	dead := stripeSub("price_paid")
	dead.Status = stripelib.SubscriptionStatusUnpaid
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": dead},
	)
	svc := NewService(repo, client, testPrices())

	ev := &Event{
		Kind:    EventKindInvoice,
		ID:      "evt_inv",
		Type:    EventTypeInvoiceFailed,
		Invoice: &Invoice{ID: "in_1", Customer: "cus_1", Subscription: "sub_1"},
	}
	require.NoError(t, svc.ProcessEvent(context.Background(), ev))
	assert.Equal(t, "free", repo.profiles[42].Tier)
}

func TestProcessEventInvoiceFailedKeepsTierDuringDunning(t *testing.T) {
	repo := newFakeRepo()
	profile, _ := repo.GetOrCreateProfile(42)
	profile.Tier = "paid"
	profile.StripeCustomerID = "cus_1"
	profile.StripeSubscriptionID = "sub_1"

	pastDue := stripeSub("price_paid")
	pastDue.Status = stripelib.SubscriptionStatusPastDue
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": pastDue},
	)
	svc := NewService(repo, client, testPrices())

	ev := &Event{
		Kind:    EventKindInvoice,
		ID:      "evt_inv2",
		Type:    EventTypeInvoiceFailed,
		Invoice: &Invoice{ID: "in_2", Customer: "cus_1", Subscription: "sub_1"},
	}
	require.NoError(t, svc.ProcessEvent(context.Background(), ev))
	assert.Equal(t, "paid", repo.profiles[42].Tier)
}

func TestProcessEventUnmappedPriceFallsBackToFree(t *testing.T) {
	repo := newFakeRepo()
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": stripeCustomer("42")},
		map[string]*stripelib.Subscription{"sub_1": stripeSub("price_unconfigured")},
	)
	svc := NewService(repo, client, testPrices())

	require.NoError(t, svc.ProcessEvent(context.Background(), subscriptionCreatedEvent()))
	assert.Equal(t, "free", repo.profiles[42].Tier)
}

func TestProcessEventMissingUserIDMetadata(t *testing.T) {
	repo := newFakeRepo()
	client := testClient(
		map[string]*stripelib.Customer{"cus_1": {ID: "cus_1"}},
		map[string]*stripelib.Subscription{"sub_1": stripeSub("price_paid")},
	)
	svc := NewService(repo, client, testPrices())

	err := svc.ProcessEvent(context.Background(), subscriptionCreatedEvent())
	assert.ErrorIs(t, err, ErrMissingUserID)
	assert.Empty(t, repo.profiles)
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testClient(nil, nil), testPrices())

	in := WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_1",
		EventType:       "checkout.session.completed",
		PayloadJSON:     `{"id":"evt_1"}`,
		SignatureValid:  true,
	}

	created, stored, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, stored)

	created, replay, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, replay.ID)
}

func TestRecordWebhookEventHashesMissingID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testClient(nil, nil), testPrices())

	created, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    ProviderStripe,
		EventType:   "customer.subscription.created",
		PayloadJSON: `{"object":"event"}`,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, stored.ProviderEventID, "hash:")
}

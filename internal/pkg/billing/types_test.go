package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripelib "github.com/stripe/stripe-go/v82"
)

func stripeEvent(t *testing.T, eventType, dataJSON string) *stripelib.Event {
	t.Helper()
	return &stripelib.Event{
		ID:   "evt_test",
		Type: stripelib.EventType(eventType),
		Data: &stripelib.EventData{Raw: json.RawMessage(dataJSON)},
	}
}

func TestParseEventCheckout(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "checkout.session.completed",
		`{"id":"cs_1","mode":"subscription","customer":"cus_1","subscription":"sub_1"}`))
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, EventKindCheckout, ev.Kind)
	require.NotNil(t, ev.Checkout)
	assert.Nil(t, ev.Subscription)
	assert.Equal(t, "cs_1", ev.Checkout.ID)
	assert.Equal(t, "sub_1", ev.Checkout.Subscription)
}

func TestParseEventSubscription(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "customer.subscription.created",
		`{"id":"sub_1","customer":"cus_1","status":"active","items":{"data":[{"price":{"id":"price_x"}}]}}`))
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, EventKindSubscription, ev.Kind)
	require.NotNil(t, ev.Subscription)
	assert.Nil(t, ev.Checkout)
	assert.Equal(t, "sub_1", ev.Subscription.ID)
	assert.Equal(t, "price_x", ev.Subscription.FirstPriceID())
}

func TestParseEventSubscriptionDeletedKeepsEventType(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, EventTypeSubscriptionDeleted,
		`{"id":"sub_1","customer":"cus_1","status":"canceled"}`))
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, EventKindSubscription, ev.Kind)
	assert.Equal(t, EventTypeSubscriptionDeleted, ev.Type)
	assert.Equal(t, "canceled", ev.Subscription.Status)
}

func TestParseEventInvoiceFailed(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, EventTypeInvoiceFailed,
		`{"id":"in_1","customer":"cus_1","subscription":"sub_1"}`))
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, EventKindInvoice, ev.Kind)
	require.NotNil(t, ev.Invoice)
	assert.Equal(t, "sub_1", ev.Invoice.Subscription)
}

func TestParseEventIgnoresUnhandledTypes(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "invoice.paid", `{}`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestParseEventBadPayload(t *testing.T) {
	_, err := ParseEvent(stripeEvent(t, "checkout.session.completed", `{`))
	assert.Error(t, err)
}

func TestFirstPriceIDSkipsEmptyItems(t *testing.T) {
	var sub Subscription
	require.NoError(t, json.Unmarshal([]byte(
		`{"items":{"data":[{"price":{"id":""}},{"price":{"id":"price_y"}}]}}`), &sub))
	assert.Equal(t, "price_y", sub.FirstPriceID())

	assert.Equal(t, "", (&Subscription{}).FirstPriceID())
}

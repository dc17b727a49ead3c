package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWebhookEventNeedsReprocessing(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		event BillingWebhookEvent
		want  bool
	}{
		{"never processed", BillingWebhookEvent{}, true},
		{"processed cleanly", BillingWebhookEvent{ProcessedAt: &now}, false},
		{"processed with error", BillingWebhookEvent{ProcessedAt: &now, ProcessingError: "retrieve customer: 503"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.NeedsReprocessing())
		})
	}
}

func TestWebhookEventIsProcessed(t *testing.T) {
	var e BillingWebhookEvent
	assert.False(t, e.IsProcessed())

	now := time.Now()
	e.ProcessedAt = &now
	assert.True(t, e.IsProcessed())
}

package models

import "time"

// BillingWebhookEvent stores Stripe webhook payloads with deduplication
// metadata for idempotent processing. The unique (provider, provider_event_id)
// index is the dedupe ledger: an insert that hits the index means the event
// was already received.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_billing_webhook_events_provider_event,unique,priority:1;index" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_billing_webhook_events_provider_event,priority:2,unique" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	ArchivedAt      *time.Time `gorm:"type:timestamp;default:null" json:"archived_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsProcessed reports whether the event already ran through the reconciler.
func (e *BillingWebhookEvent) IsProcessed() bool {
	return e.ProcessedAt != nil
}

// NeedsReprocessing reports whether a redelivered event should run through
// the reconciler again: the first attempt never finished or ended in error.
// Successfully processed events short-circuit as duplicates.
func (e *BillingWebhookEvent) NeedsReprocessing() bool {
	return e.ProcessedAt == nil || e.ProcessingError != ""
}

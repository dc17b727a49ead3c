package jobqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/s3archive"
)

var (
	archiveClient     *s3archive.Client
	archiveClientErr  error
	archiveClientOnce sync.Once
)

func getArchiveClient() (*s3archive.Client, error) {
	archiveClientOnce.Do(func() {
		cfg, err := s3archive.LoadConfig()
		if err != nil {
			archiveClientErr = err
			return
		}
		if !cfg.IsEnabled() {
			archiveClientErr = fmt.Errorf("S3 archival is disabled")
			return
		}
		archiveClient, archiveClientErr = s3archive.NewClient(cfg)
	})
	return archiveClient, archiveClientErr
}

// processWebhookArchiveJob copies a processed webhook payload to S3 for audit
// and stamps the event row. Archival disabled is a no-op, not a failure.
func (q *Queue) processWebhookArchiveJob(ctx context.Context, job *Job) error {
	payload, err := WebhookArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid webhook archive payload: %w", err)
	}

	db := database.GetDB()

	var event models.BillingWebhookEvent
	if err := db.Where("id = ?", payload.WebhookEventID).First(&event).Error; err != nil {
		return fmt.Errorf("webhook event %d not found: %w", payload.WebhookEventID, err)
	}
	if event.ArchivedAt != nil {
		return nil
	}

	client, err := getArchiveClient()
	if err != nil {
		log.Debugf("[JobQueue] Webhook archival unavailable: %v", err)
		return nil
	}

	if _, err := client.UploadPayload(ctx, event.Provider, event.ProviderEventID, []byte(event.PayloadJSON), event.CreatedAt); err != nil {
		return err
	}

	now := time.Now()
	return db.Model(&models.BillingWebhookEvent{}).
		Where("id = ?", event.ID).
		Update("archived_at", &now).Error
}

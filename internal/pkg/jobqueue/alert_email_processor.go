package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/entitlements"
	"github.com/tradewindhq/tradewind/internal/pkg/mail"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

// processAlertEmailJob sends notification mails for a freshly published alert
// to every member whose tier covers it and who has alert mails enabled.
func (q *Queue) processAlertEmailJob(ctx context.Context, job *Job) error {
	_ = ctx
	payload, err := AlertEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid alert email payload: %w", err)
	}

	db := database.GetDB()

	var alert models.Alert
	if err := db.Where("id = ?", payload.AlertID).First(&alert).Error; err != nil {
		return fmt.Errorf("alert %d not found: %w", payload.AlertID, err)
	}
	if !alert.Published {
		log.Infof("[JobQueue] Alert %s no longer published, skipping mails", alert.UUID)
		return nil
	}

	appSettings := models.GetAppSettings()
	if appSettings != nil && !appSettings.AreAlertEmailsEnabled() {
		log.Info("[JobQueue] Alert mails disabled site-wide, skipping")
		return nil
	}

	var users []models.User
	if err := db.Where("status = ?", models.STATUS_ACTIVE).Find(&users).Error; err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	subject := fmt.Sprintf("New alert: %s (%s)", alert.Title, alert.Symbol)
	body := fmt.Sprintf(
		"A new trading alert is live.\n\nSymbol: %s\nEntry zone: %.2f - %.2f\nTarget: %.2f\nStop: %.2f\n",
		alert.Symbol, alert.EntryLow, alert.EntryHigh, alert.TargetPrice, alert.StopLoss,
	)

	sent := 0
	for i := range users {
		user := &users[i]
		profile, err := models.GetOrCreateProfile(db, user.ID)
		if err != nil {
			log.Errorf("[JobQueue] Profile lookup failed for user %d: %v", user.ID, err)
			continue
		}

		view := permissions.ForUser(user, profile, nil)
		if !entitlements.CanReceiveAlertEmails(view, profile, appSettings) {
			continue
		}
		if !permissions.HasTierAccess(view, permissions.Tier(alert.MinTier)) {
			continue
		}

		if err := mail.SendMail(user.Email, subject, body); err != nil {
			log.Errorf("[JobQueue] Alert mail to %s failed: %v", user.Email, err)
			continue
		}
		_ = models.CreateNotification(db, user.ID, "alert", alert.Title, alert.ID)
		sent++
	}

	log.Infof("[JobQueue] Alert %s: %d notification mails sent", alert.UUID, sent)
	return nil
}

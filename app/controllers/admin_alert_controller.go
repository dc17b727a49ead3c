package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/jobqueue"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

const adminAlertsPerPage = 50

// HandleAdminAlerts lists all alerts, published or not
func HandleAdminAlerts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetAlertRepository()
	alerts, err := repo.List((page-1)*adminAlertsPerPage, adminAlertsPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alerts")
	}
	total, _ := repo.Count()

	return render(c, "admin/alerts", "Alerts", fiber.Map{
		"Alerts":      alerts,
		"Page":        page,
		"Total":       total,
		"HasNextPage": int64(page*adminAlertsPerPage) < total,
	})
}

// HandleAdminAlertNew renders the creation form
func HandleAdminAlertNew(c *fiber.Ctx) error {
	return render(c, "admin/alert_form", "New alert", fiber.Map{
		"Alert": &models.Alert{MinTier: string(permissions.TierPaid)},
		"Tiers": permissions.AllTiers(),
	})
}

// HandleAdminAlertCreate stores a new, initially unpublished alert
func HandleAdminAlertCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	alert := &models.Alert{
		Symbol:      utils.NormalizeSymbol(c.FormValue("symbol")),
		Title:       c.FormValue("title"),
		Notes:       c.FormValue("notes"),
		MinTier:     c.FormValue("min_tier", string(permissions.TierPaid)),
		Status:      models.AlertStatusActive,
		CreatedByID: userCtx.UserID,
	}
	if !parseAlertLevels(c, alert) {
		fm := fiber.Map{"type": "error", "message": "Entry zone, target and stop must be valid prices."}
		return flash.WithError(c, fm).Redirect("/admin/alerts/new")
	}
	if !permissions.Tier(alert.MinTier).Valid() {
		fm := fiber.Map{"type": "error", "message": "Unknown tier"}
		return flash.WithError(c, fm).Redirect("/admin/alerts/new")
	}

	if err := repository.GetGlobalFactory().GetAlertRepository().Create(alert); err != nil {
		log.Errorf("Alert create failed: %v", err)
		fm := fiber.Map{"type": "error", "message": "Alert could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/alerts/new")
	}

	fm := fiber.Map{"type": "success", "message": "Alert created. Publish it to notify members."}
	return flash.WithSuccess(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
}

// HandleAdminAlertEdit renders the edit form
func HandleAdminAlertEdit(c *fiber.Ctx) error {
	alert, ok := loadAdminAlert(c)
	if !ok {
		return c.Redirect("/admin/alerts")
	}
	return render(c, "admin/alert_form", "Edit alert", fiber.Map{
		"Alert": alert,
		"Tiers": permissions.AllTiers(),
	})
}

// HandleAdminAlertUpdate applies edits to levels, notes, tier and status
func HandleAdminAlertUpdate(c *fiber.Ctx) error {
	alert, ok := loadAdminAlert(c)
	if !ok {
		return c.Redirect("/admin/alerts")
	}

	alert.Symbol = utils.NormalizeSymbol(c.FormValue("symbol", alert.Symbol))
	alert.Title = c.FormValue("title", alert.Title)
	alert.Notes = c.FormValue("notes", alert.Notes)
	if tier := c.FormValue("min_tier"); tier != "" {
		if !permissions.Tier(tier).Valid() {
			fm := fiber.Map{"type": "error", "message": "Unknown tier"}
			return flash.WithError(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
		}
		alert.MinTier = tier
	}
	if !parseAlertLevels(c, alert) {
		fm := fiber.Map{"type": "error", "message": "Entry zone, target and stop must be valid prices."}
		return flash.WithError(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
	}

	if status := c.FormValue("status"); status != "" {
		switch status {
		case models.AlertStatusActive, models.AlertStatusHit, models.AlertStatusStopped, models.AlertStatusExpired:
			if alert.Status == models.AlertStatusActive && status != models.AlertStatusActive {
				now := time.Now()
				alert.ClosedAt = &now
			}
			alert.Status = status
		default:
			fm := fiber.Map{"type": "error", "message": "Unknown status"}
			return flash.WithError(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
		}
	}

	if err := repository.GetGlobalFactory().GetAlertRepository().Update(alert); err != nil {
		fm := fiber.Map{"type": "error", "message": "Alert could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
	}

	fm := fiber.Map{"type": "success", "message": "Alert saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
}

// HandleAdminAlertPublish publishes an alert and queues the notification
// mail fan-out. Publishing twice does not re-send mails.
func HandleAdminAlertPublish(c *fiber.Ctx) error {
	alert, ok := loadAdminAlert(c)
	if !ok {
		return c.Redirect("/admin/alerts")
	}
	if alert.Published {
		fm := fiber.Map{"type": "info", "message": "Alert is already published."}
		return flash.WithInfo(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
	}

	now := time.Now()
	alert.Published = true
	alert.PublishedAt = &now
	if err := repository.GetGlobalFactory().GetAlertRepository().Update(alert); err != nil {
		fm := fiber.Map{"type": "error", "message": "Alert could not be published"}
		return flash.WithError(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
	}

	if err := jobqueue.EnqueueAlertEmail(alert.ID, alert.UUID); err != nil {
		log.Errorf("Alert email enqueue failed for alert %d: %v", alert.ID, err)
	}

	log.Infof("Alert %d (%s) published", alert.ID, alert.Symbol)
	fm := fiber.Map{"type": "success", "message": "Alert published. Notification mails are on the way."}
	return flash.WithSuccess(c, fm).Redirect("/admin/alerts/" + strconv.Itoa(int(alert.ID)))
}

// HandleAdminAlertDelete soft-deletes an alert
func HandleAdminAlertDelete(c *fiber.Ctx) error {
	alert, ok := loadAdminAlert(c)
	if !ok {
		return c.Redirect("/admin/alerts")
	}

	if err := repository.GetGlobalFactory().GetAlertRepository().Delete(alert.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": "Alert could not be deleted"}
		return flash.WithError(c, fm).Redirect("/admin/alerts")
	}

	fm := fiber.Map{"type": "success", "message": "Alert deleted."}
	return flash.WithSuccess(c, fm).Redirect("/admin/alerts")
}

// parseAlertLevels reads the price levels from the form into the alert.
// Returns false when any level is missing or out of order.
func parseAlertLevels(c *fiber.Ctx, alert *models.Alert) bool {
	entryLow, err1 := strconv.ParseFloat(c.FormValue("entry_low"), 64)
	entryHigh, err2 := strconv.ParseFloat(c.FormValue("entry_high"), 64)
	target, err3 := strconv.ParseFloat(c.FormValue("target_price"), 64)
	stop, err4 := strconv.ParseFloat(c.FormValue("stop_loss", "0"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	if entryLow <= 0 || entryHigh < entryLow || target <= 0 || stop < 0 {
		return false
	}
	alert.EntryLow = entryLow
	alert.EntryHigh = entryHigh
	alert.TargetPrice = target
	alert.StopLoss = stop
	return true
}

func loadAdminAlert(c *fiber.Ctx) (*models.Alert, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Alert not found"})
		return nil, false
	}
	alert, err := repository.GetGlobalFactory().GetAlertRepository().GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Alert not found"})
		return nil, false
	}
	return alert, true
}

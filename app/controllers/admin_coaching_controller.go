package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
)

const adminCoachingPerPage = 50

// HandleAdminCoaching lists coaching purchases for scheduling
func HandleAdminCoaching(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetCoachingRepository()
	purchases, err := repo.List((page-1)*adminCoachingPerPage, adminCoachingPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load purchases")
	}
	total, _ := repo.Count()

	return render(c, "admin/coaching", "Coaching", fiber.Map{
		"Purchases":   purchases,
		"Page":        page,
		"HasNextPage": int64(page*adminCoachingPerPage) < total,
	})
}

// HandleAdminCoachingSchedule marks a paid purchase as scheduled and
// notifies the member.
func HandleAdminCoachingSchedule(c *fiber.Ctx) error {
	purchase, ok := loadAdminPurchase(c)
	if !ok {
		return c.Redirect("/admin/coaching")
	}
	if !purchase.IsPaid() {
		fm := fiber.Map{"type": "error", "message": "Purchase has not been paid yet."}
		return flash.WithError(c, fm).Redirect("/admin/coaching")
	}

	scheduledFor, err := time.Parse("2006-01-02T15:04", c.FormValue("scheduled_for"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Please provide a valid date and time."}
		return flash.WithError(c, fm).Redirect("/admin/coaching")
	}

	purchase.Status = models.CoachingStatusScheduled
	purchase.ScheduledFor = &scheduledFor
	if err := repository.GetGlobalFactory().GetCoachingRepository().Update(purchase); err != nil {
		fm := fiber.Map{"type": "error", "message": "Purchase could not be updated"}
		return flash.WithError(c, fm).Redirect("/admin/coaching")
	}

	_ = models.CreateNotification(database.GetDB(), purchase.UserID, "coaching",
		"Your coaching session is scheduled for "+scheduledFor.Format("Jan 2, 2006 15:04")+".",
		purchase.ID)

	fm := fiber.Map{"type": "success", "message": "Session scheduled."}
	return flash.WithSuccess(c, fm).Redirect("/admin/coaching")
}

// HandleAdminCoachingComplete marks a scheduled session as completed
func HandleAdminCoachingComplete(c *fiber.Ctx) error {
	purchase, ok := loadAdminPurchase(c)
	if !ok {
		return c.Redirect("/admin/coaching")
	}
	if purchase.Status != models.CoachingStatusScheduled {
		fm := fiber.Map{"type": "error", "message": "Only scheduled sessions can be completed."}
		return flash.WithError(c, fm).Redirect("/admin/coaching")
	}

	purchase.Status = models.CoachingStatusCompleted
	if err := repository.GetGlobalFactory().GetCoachingRepository().Update(purchase); err != nil {
		fm := fiber.Map{"type": "error", "message": "Purchase could not be updated"}
		return flash.WithError(c, fm).Redirect("/admin/coaching")
	}

	fm := fiber.Map{"type": "success", "message": "Session marked as completed."}
	return flash.WithSuccess(c, fm).Redirect("/admin/coaching")
}

func loadAdminPurchase(c *fiber.Ctx) (*models.CoachingPurchase, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Purchase not found"})
		return nil, false
	}
	purchase, err := repository.GetGlobalFactory().GetCoachingRepository().GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Purchase not found"})
		return nil, false
	}
	return purchase, true
}

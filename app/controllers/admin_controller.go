package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/jobqueue"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
	"github.com/tradewindhq/tradewind/internal/pkg/statistics"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

const adminUsersPerPage = 50

// HandleAdminDashboard renders the admin overview with site statistics and
// job queue state.
func HandleAdminDashboard(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queue := jobqueue.GetManager().GetQueue()
	jobStats, err := queue.GetJobStats(ctx)
	if err != nil {
		log.Warnf("Job stats unavailable: %v", err)
	}
	queueSize, _ := queue.GetQueueSize(ctx)

	openAlerts, _ := repository.GetGlobalFactory().GetAlertRepository().CountByStatus(models.AlertStatusActive)

	return render(c, "admin/dashboard", "Admin", fiber.Map{
		"Stats":      stats,
		"JobStats":   jobStats,
		"QueueSize":  queueSize,
		"OpenAlerts": openAlerts,
	})
}

// HandleAdminUsers lists users with their membership profiles, optionally
// filtered by a search query.
func HandleAdminUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	query := c.Query("q")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	var (
		users []repository.UserWithProfile
		err   error
	)
	if query != "" {
		users, err = repo.SearchWithProfiles(query)
	} else {
		users, err = repo.GetWithProfiles((page-1)*adminUsersPerPage, adminUsersPerPage)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load users")
	}

	total, _ := repo.Count()

	return render(c, "admin/users", "Users", fiber.Map{
		"Users":       users,
		"Query":       query,
		"Page":        page,
		"TotalUsers":  total,
		"HasNextPage": query == "" && int64(page*adminUsersPerPage) < total,
	})
}

// HandleAdminUserEdit renders the edit form for a single user
func HandleAdminUserEdit(c *fiber.Ctx) error {
	user, profile, ok := loadAdminTarget(c)
	if !ok {
		return c.Redirect("/admin/users")
	}

	var caps *models.AdminPermissions
	if user.IsAdmin() {
		caps, _ = models.GetOrCreateAdminPermissions(database.GetDB(), user.ID)
	}

	return render(c, "admin/user_edit", "Edit user", fiber.Map{
		"EditUser":     user,
		"EditProfile":  profile,
		"Capabilities": caps,
		"Tiers":        permissions.AllTiers(),
	})
}

// HandleAdminUserUpdate applies status, tier and admin role changes. Tier
// changes made here are manual overrides; the next Stripe webhook for the
// user wins.
func HandleAdminUserUpdate(c *fiber.Ctx) error {
	user, profile, ok := loadAdminTarget(c)
	if !ok {
		return c.Redirect("/admin/users")
	}

	db := database.GetDB()

	if status := c.FormValue("status"); status != "" {
		switch status {
		case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
			user.Status = status
		default:
			fm := fiber.Map{"type": "error", "message": "Unknown status"}
			return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
		}
	}

	if role := c.FormValue("role"); role == models.ROLE_USER || role == models.ROLE_ADMIN {
		user.Role = role
	}

	if err := db.Save(user).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "User could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
	}

	if tier := c.FormValue("tier"); tier != "" {
		if !permissions.Tier(tier).Valid() {
			fm := fiber.Map{"type": "error", "message": "Unknown tier"}
			return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
		}
		profile.Tier = tier
		if err := db.Save(profile).Error; err != nil {
			fm := fiber.Map{"type": "error", "message": "Tier could not be saved"}
			return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
		}
	}

	if adminRole := c.FormValue("admin_role"); user.IsAdmin() && adminRole != profile.AdminRole {
		profile.AdminRole = adminRole
		if err := db.Save(profile).Error; err != nil {
			fm := fiber.Map{"type": "error", "message": "Admin role could not be saved"}
			return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
		}
	}

	log.Infof("User %d updated by admin %d", user.ID, usercontext.GetUserContext(c).UserID)
	fm := fiber.Map{"type": "success", "message": "User saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
}

// HandleAdminUserCapabilities updates the admin capability flags of a user.
// Only a super admin reaches this handler; the route is guarded accordingly.
func HandleAdminUserCapabilities(c *fiber.Ctx) error {
	actor := usercontext.GetUserContext(c)
	if permissions.AdminRole(actor.AdminRole) != permissions.RoleSuperAdmin {
		return c.Status(fiber.StatusForbidden).SendString("Only super admins may edit capabilities")
	}

	user, _, ok := loadAdminTarget(c)
	if !ok {
		return c.Redirect("/admin/users")
	}
	if !user.IsAdmin() {
		fm := fiber.Map{"type": "error", "message": "User is not an admin"}
		return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
	}

	db := database.GetDB()
	caps, err := models.GetOrCreateAdminPermissions(db, user.ID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Capabilities could not be loaded"}
		return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
	}

	for _, key := range []string{
		permissions.CapManageUsers,
		permissions.CapCreateAlerts,
		permissions.CapEditAlerts,
		permissions.CapDeleteAlerts,
		permissions.CapManageEducation,
		permissions.CapManageCoaching,
		permissions.CapManageContent,
		permissions.CapViewAnalytics,
	} {
		caps.SetCapability(key, c.FormValue(key) == "on")
	}

	if err := db.Save(caps).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "Capabilities could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
	}

	log.Infof("Capabilities of user %d updated by super admin %d", user.ID, actor.UserID)
	fm := fiber.Map{"type": "success", "message": "Capabilities saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/users/" + strconv.Itoa(int(user.ID)))
}

// HandleAdminSettings renders the application settings form
func HandleAdminSettings(c *fiber.Ctx) error {
	settings, err := repository.GetGlobalFactory().GetSettingRepository().Get()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	return render(c, "admin/settings", "Site settings", fiber.Map{
		"Settings": settings,
	})
}

// HandleAdminSettingsUpdate persists the application settings
func HandleAdminSettingsUpdate(c *fiber.Ctx) error {
	settings := &models.AppSettings{
		SiteTitle:           c.FormValue("site_title"),
		SiteDescription:     c.FormValue("site_description"),
		RegistrationEnabled: c.FormValue("registration_enabled") == "on",
		AlertEmailsEnabled:  c.FormValue("alert_emails_enabled") == "on",
	}

	if err := repository.GetGlobalFactory().GetSettingRepository().Save(settings); err != nil {
		log.Errorf("Settings save failed: %v", err)
		fm := fiber.Map{"type": "error", "message": "Settings could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/settings")
	}

	fm := fiber.Map{"type": "success", "message": "Settings saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/settings")
}

// HandleAdminAnalytics renders signup and alert charts plus the tier split
func HandleAdminAnalytics(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	factory := repository.GetGlobalFactory()
	signups, err := factory.GetUserRepository().GetDailyStats(start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load signup stats")
	}
	alerts, err := factory.GetAlertRepository().GetDailyStats(start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load alert stats")
	}
	tiers, err := factory.GetUserRepository().GetTierStats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load tier stats")
	}

	return render(c, "admin/analytics", "Analytics", fiber.Map{
		"Days":        days,
		"DailyUsers":  signups,
		"DailyAlerts": alerts,
		"TierStats":   tiers,
		"HitRate":     statistics.GetHitRate(),
	})
}

// loadAdminTarget resolves the :id route param to a user and their profile
func loadAdminTarget(c *fiber.Ctx) (*models.User, *models.Profile, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "User not found"})
		return nil, nil, false
	}
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "User not found"})
		return nil, nil, false
	}
	profile, err := models.GetOrCreateProfile(database.GetDB(), user.ID)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Profile could not be loaded"})
		return nil, nil, false
	}
	return user, profile, true
}

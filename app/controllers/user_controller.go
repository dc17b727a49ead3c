package controllers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/constants"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

const avatarSize = 256

// HandleUserProfile renders the member's profile page
func HandleUserProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var user models.User
	if err := database.GetDB().First(&user, userCtx.UserID).Error; err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect("/")
	}

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	positionCount, _ := repository.GetGlobalFactory().GetPortfolioRepository().CountByUserID(userCtx.UserID)

	avatarURL := user.AvatarURL
	if avatarURL == "" {
		avatarURL = utils.GetGravatarURL(user.Email, avatarSize)
	}

	return render(c, "user/profile", "Profile", fiber.Map{
		"User":          user,
		"Profile":       profile,
		"AvatarURL":     avatarURL,
		"PositionCount": positionCount,
	})
}

// HandleUserSettings renders the settings page
func HandleUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	return render(c, "user/settings", "Settings", fiber.Map{
		"Profile": profile,
	})
}

// HandleUserMembership renders the membership page with tier and billing state
func HandleUserMembership(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load profile")
	}

	purchases, err := repository.GetGlobalFactory().GetCoachingRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load purchases")
	}

	return render(c, "user/membership", "Membership", fiber.Map{
		"Profile":   profile,
		"Purchases": purchases,
	})
}

// HandleUserNotificationUpdate toggles the alert mail preference
func HandleUserNotificationUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	profile, err := models.GetOrCreateProfile(database.GetDB(), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Settings could not be loaded"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	profile.NotifyAlertEmails = c.FormValue("notify_alert_emails") == "on"
	if err := database.GetDB().Save(profile).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "Settings could not be saved"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{"type": "success", "message": "Notification settings saved."}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}

// HandleUserAvatarUpload stores a square-cropped avatar for the member
func HandleUserAvatarUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "No image selected"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	src, err := fileHeader.Open()
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Image could not be read"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Unsupported image format"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	avatar := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	dir := filepath.Join("public", constants.AvatarsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fm := fiber.Map{"type": "error", "message": "Avatar could not be stored"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}
	fileName := fmt.Sprintf("u%d.jpg", userCtx.UserID)
	if err := imaging.Save(avatar, filepath.Join(dir, fileName), imaging.JPEGQuality(85)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Avatar could not be stored"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	avatarURL := constants.AvatarsRoute + "/" + fileName
	if err := database.GetDB().Model(&models.User{}).
		Where("id = ?", userCtx.UserID).
		Update("avatar_url", avatarURL).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "Avatar could not be saved"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{"type": "success", "message": "Avatar updated."}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}

// HandleUserAPIKeyGenerate issues a fresh API key and shows it exactly once
func HandleUserAPIKeyGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	profile, err := models.GetOrCreateProfile(db, userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Profile could not be loaded"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	rawKey, err := profile.IssueAPIKey()
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "API key generation failed"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}
	if err := db.Save(profile).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "API key could not be saved"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	// The raw key is only shown on this response, never persisted
	return render(c, "user/apikey", "API key", fiber.Map{
		"RawKey":  rawKey,
		"Profile": profile,
	})
}

// HandleUserAPIKeyRevoke revokes the active API key
func HandleUserAPIKeyRevoke(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	profile, err := models.GetOrCreateProfile(db, userCtx.UserID)
	if err != nil || !profile.HasActiveAPIKey() {
		fm := fiber.Map{"type": "error", "message": "No active API key"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	profile.RevokeAPIKey()
	if err := db.Save(profile).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "API key could not be revoked"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{"type": "success", "message": "API key revoked."}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}

// HandleUserNotifications lists the member's recent notifications
func HandleUserNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var notifications []models.Notification
	if err := database.GetDB().
		Where("user_id = ?", userCtx.UserID).
		Order("created_at DESC").Limit(50).
		Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load notifications")
	}

	// Mark everything as read once listed
	_ = models.MarkAllNotificationsRead(database.GetDB(), userCtx.UserID)

	return render(c, "user/notifications", "Notifications", fiber.Map{
		"Notifications": notifications,
	})
}

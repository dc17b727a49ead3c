package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

func TestVisibleAlertTiers(t *testing.T) {
	assert.Nil(t, VisibleAlertTiers(nil))
	assert.Nil(t, VisibleAlertTiers(&permissions.User{Tier: "platinum"}))

	free := &permissions.User{Tier: permissions.TierFree}
	assert.Equal(t, []string{"free"}, VisibleAlertTiers(free))

	premium := &permissions.User{Tier: permissions.TierPremium}
	assert.Equal(t, []string{"free", "paid", "premium"}, VisibleAlertTiers(premium))

	employee := &permissions.User{Tier: permissions.TierEmployee}
	assert.Equal(t, []string{"free", "paid", "premium", "mentorship"}, VisibleAlertTiers(employee))
}

func TestCanReceiveAlertEmails(t *testing.T) {
	app := &models.AppSettings{AlertEmailsEnabled: true}
	profile := &models.Profile{NotifyAlertEmails: true}
	paid := &permissions.User{Tier: permissions.TierPaid}

	assert.True(t, CanReceiveAlertEmails(paid, profile, app))

	free := &permissions.User{Tier: permissions.TierFree}
	assert.False(t, CanReceiveAlertEmails(free, profile, app))

	optedOut := &models.Profile{NotifyAlertEmails: false}
	assert.False(t, CanReceiveAlertEmails(paid, optedOut, app))

	disabled := &models.AppSettings{AlertEmailsEnabled: false}
	assert.False(t, CanReceiveAlertEmails(paid, profile, disabled))
}

func TestCanAccessCourse(t *testing.T) {
	course := &models.Course{MinTier: "premium", Published: true}

	assert.True(t, CanAccessCourse(&permissions.User{Tier: permissions.TierPremium}, course))
	assert.True(t, CanAccessCourse(&permissions.User{Tier: permissions.TierEmployee}, course))
	assert.False(t, CanAccessCourse(&permissions.User{Tier: permissions.TierPaid}, course))
	assert.False(t, CanAccessCourse(nil, course))

	draft := &models.Course{MinTier: "free", Published: false}
	assert.False(t, CanAccessCourse(&permissions.User{Tier: permissions.TierEmployee}, draft))
}

package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradewindhq/tradewind/app/models"
)

func userAt(tier Tier) *User {
	return &User{Tier: tier}
}

func TestHasFeaturePermissionAccumulatesLowerTiers(t *testing.T) {
	for i, tier := range AllTiers() {
		for _, lower := range AllTiers()[:i+1] {
			for _, perm := range tierGrants[lower] {
				assert.True(t, HasFeaturePermission(userAt(tier), perm),
					"tier %s should hold %s unlocked at %s", tier, perm, lower)
			}
		}
	}
}

func TestHasFeaturePermissionDoesNotLeakHigherTiers(t *testing.T) {
	free := userAt(TierFree)

	assert.True(t, HasFeaturePermission(free, PermViewNews))
	assert.False(t, HasFeaturePermission(free, PermViewAlerts))
	assert.False(t, HasFeaturePermission(free, PermEducationAccess))
	assert.False(t, HasFeaturePermission(free, PermCoachingBooking))

	paid := userAt(TierPaid)
	assert.True(t, HasFeaturePermission(paid, PermUsePortfolioTracking))
	assert.False(t, HasFeaturePermission(paid, PermViewPremiumAlerts))
}

func TestHasFeaturePermissionEmployeeOverride(t *testing.T) {
	employee := userAt(TierEmployee)

	for _, grants := range tierGrants {
		for _, perm := range grants {
			assert.True(t, HasFeaturePermission(employee, perm))
		}
	}
	// including permissions no tier unlocks
	assert.True(t, HasFeaturePermission(employee, "not_a_real_permission"))
}

func TestHasFeaturePermissionFailClosed(t *testing.T) {
	assert.False(t, HasFeaturePermission(nil, PermViewNews))
	assert.False(t, HasFeaturePermission(userAt("platinum"), PermViewNews))
	assert.False(t, HasFeaturePermission(userAt(""), PermViewNews))
}

func TestHasTierAccessMonotonic(t *testing.T) {
	premium := userAt(TierPremium)

	assert.True(t, HasTierAccess(premium, TierPremium))
	assert.True(t, HasTierAccess(premium, TierPaid))
	assert.True(t, HasTierAccess(premium, TierFree))
	assert.False(t, HasTierAccess(premium, TierMentorship))
}

func TestHasTierAccessEdgeCases(t *testing.T) {
	assert.False(t, HasTierAccess(nil, TierFree))
	assert.False(t, HasTierAccess(userAt("platinum"), TierFree))
	assert.True(t, HasTierAccess(userAt(TierEmployee), TierMentorship))
}

func TestHasAdminCapability(t *testing.T) {
	alertsAdmin := &User{
		Tier:      TierEmployee,
		IsAdmin:   true,
		AdminRole: RoleAlertsAdmin,
		AdminPermissions: map[string]bool{
			CapCreateAlerts: true,
		},
	}

	assert.True(t, HasAdminCapability(alertsAdmin, CapCreateAlerts))
	assert.False(t, HasAdminCapability(alertsAdmin, CapManageUsers))
	assert.False(t, HasAdminCapability(alertsAdmin, "unknownCapability"))
}

func TestHasAdminCapabilitySuperAdmin(t *testing.T) {
	super := &User{IsAdmin: true, AdminRole: RoleSuperAdmin}

	assert.True(t, HasAdminCapability(super, CapManageUsers))
	assert.True(t, HasAdminCapability(super, CapDeleteAlerts))
}

func TestHasAdminCapabilityNonAdmin(t *testing.T) {
	member := &User{
		Tier:             TierMentorship,
		AdminPermissions: map[string]bool{CapManageUsers: true},
	}

	assert.False(t, HasAdminCapability(member, CapManageUsers))
	assert.False(t, HasAdminCapability(nil, CapManageUsers))
}

func TestForUser(t *testing.T) {
	assert.Nil(t, ForUser(nil, nil, nil))

	u := &models.User{Role: models.ROLE_USER}
	view := ForUser(u, nil, nil)
	assert.Equal(t, TierFree, view.Tier)
	assert.False(t, view.IsAdmin)

	admin := &models.User{Role: models.ROLE_ADMIN}
	profile := &models.Profile{Tier: string(TierPremium), AdminRole: string(RoleAlertsAdmin)}
	perms := &models.AdminPermissions{CanCreateAlerts: true}

	view = ForUser(admin, profile, perms)
	assert.Equal(t, TierPremium, view.Tier)
	assert.True(t, view.IsAdmin)
	assert.True(t, HasAdminCapability(view, CapCreateAlerts))
	assert.False(t, HasAdminCapability(view, CapManageUsers))
}

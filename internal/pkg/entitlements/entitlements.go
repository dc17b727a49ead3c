package entitlements

import (
	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/permissions"
)

// VisibleAlertTiers returns the alert min-tier values the user is allowed to
// see. Free members only see free alerts; employee sees everything.
func VisibleAlertTiers(u *permissions.User) []string {
	if u == nil {
		return nil
	}
	all := permissions.AllTiers()
	if u.Tier == permissions.TierEmployee {
		out := make([]string, len(all))
		for i, t := range all {
			out[i] = string(t)
		}
		return out
	}
	rank := u.Tier.Rank()
	if rank < 0 {
		return nil
	}
	out := make([]string, 0, rank+1)
	for _, t := range all[:rank+1] {
		out = append(out, string(t))
	}
	return out
}

// CanReceiveAlertEmails combines the site-wide toggle, the user's tier and
// the user's own notification preference into the final send decision.
func CanReceiveAlertEmails(u *permissions.User, p *models.Profile, app *models.AppSettings) bool {
	siteEnabled := app != nil && app.AreAlertEmailsEnabled()
	tierAllowed := permissions.HasFeaturePermission(u, permissions.PermViewAlerts)
	pref := p != nil && p.NotifyAlertEmails

	return siteEnabled && tierAllowed && pref
}

// CanAccessCourse reports whether the user's tier unlocks a course.
func CanAccessCourse(u *permissions.User, course *models.Course) bool {
	if course == nil {
		return false
	}
	if !course.Published {
		return false
	}
	return permissions.HasTierAccess(u, permissions.Tier(course.MinTier))
}

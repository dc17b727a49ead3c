package permissions

import "github.com/tradewindhq/tradewind/app/models"

// Tier is a membership level. Tiers form a strict total order
// free < paid < premium < mentorship; employee sits outside the order and
// grants every feature permission.
type Tier string

const (
	TierFree       Tier = "free"
	TierPaid       Tier = "paid"
	TierPremium    Tier = "premium"
	TierMentorship Tier = "mentorship"
	TierEmployee   Tier = "employee"
)

// AdminRole scopes which admin area a user primarily manages. super_admin
// implies every admin capability.
type AdminRole string

const (
	RoleSuperAdmin     AdminRole = "super_admin"
	RoleAlertsAdmin    AdminRole = "alerts_admin"
	RoleEducationAdmin AdminRole = "education_admin"
	RoleCoachingAdmin  AdminRole = "coaching_admin"
	RoleContentAdmin   AdminRole = "content_admin"
)

// Feature permissions, grouped by the tier that first unlocks them. A
// permission unlocked at a tier is granted at every higher tier as well.
const (
	PermViewFreeAlerts       = "view_free_alerts"
	PermViewNews             = "view_news"
	PermViewAlerts           = "view_alerts"
	PermUsePortfolioTracking = "use_portfolio_tracking"
	PermLiveQuotes           = "live_quotes"
	PermViewPremiumAlerts    = "view_premium_alerts"
	PermEducationAccess      = "education_access"
	PermRealtimeStream       = "realtime_stream"
	PermCoachingBooking      = "coaching_booking"
	PermMentorshipSessions   = "mentorship_sessions"
	PermPrioritySupport      = "priority_support"
)

// Admin capability keys, matching the column names on AdminPermissions.
const (
	CapManageUsers     = "canManageUsers"
	CapCreateAlerts    = "canCreateAlerts"
	CapEditAlerts      = "canEditAlerts"
	CapDeleteAlerts    = "canDeleteAlerts"
	CapManageEducation = "canManageEducation"
	CapManageCoaching  = "canManageCoaching"
	CapManageContent   = "canManageContent"
	CapViewAnalytics   = "canViewAnalytics"
)

// tierOrder is the ranked membership ladder, lowest first. employee is
// deliberately absent: it is an override, not a rank.
var tierOrder = []Tier{TierFree, TierPaid, TierPremium, TierMentorship}

// tierGrants maps each tier to the permissions first unlocked there.
// Storage is non-cumulative; the resolved check accumulates lower tiers.
var tierGrants = map[Tier][]string{
	TierFree:       {PermViewFreeAlerts, PermViewNews},
	TierPaid:       {PermViewAlerts, PermUsePortfolioTracking, PermLiveQuotes},
	TierPremium:    {PermViewPremiumAlerts, PermEducationAccess, PermRealtimeStream},
	TierMentorship: {PermCoachingBooking, PermMentorshipSessions, PermPrioritySupport},
}

// Rank returns the tier's position in the membership ladder, or -1 for
// employee and unknown values.
func (t Tier) Rank() int {
	for i, candidate := range tierOrder {
		if t == candidate {
			return i
		}
	}
	return -1
}

// Valid reports whether t is a known tier, including employee.
func (t Tier) Valid() bool {
	return t == TierEmployee || t.Rank() >= 0
}

// AllTiers returns the ranked ladder, lowest first, without employee.
func AllTiers() []Tier {
	out := make([]Tier, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// User is the resolver's view of a member: just enough state to answer
// capability checks without touching storage.
type User struct {
	Tier             Tier
	IsAdmin          bool
	AdminRole        AdminRole
	AdminPermissions map[string]bool
}

// ForUser assembles a resolver view from the persisted records. Any of the
// inputs may be nil; absence resolves to no access.
func ForUser(u *models.User, p *models.Profile, ap *models.AdminPermissions) *User {
	if u == nil {
		return nil
	}
	view := &User{Tier: TierFree, IsAdmin: u.IsAdmin()}
	if p != nil {
		if p.Tier != "" {
			view.Tier = Tier(p.Tier)
		}
		view.AdminRole = AdminRole(p.AdminRole)
	}
	if view.IsAdmin && ap != nil {
		view.AdminPermissions = ap.AsMap()
	}
	return view
}

// HasFeaturePermission reports whether the user's tier (or any lower tier)
// unlocks the named permission. Fail-closed: nil user or unknown tier grants
// nothing; employee grants everything.
func HasFeaturePermission(u *User, permission string) bool {
	if u == nil {
		return false
	}
	if u.Tier == TierEmployee {
		return true
	}
	rank := u.Tier.Rank()
	if rank < 0 {
		return false
	}
	for _, tier := range tierOrder[:rank+1] {
		for _, granted := range tierGrants[tier] {
			if granted == permission {
				return true
			}
		}
	}
	return false
}

// HasTierAccess reports whether the user's tier is at or above the required
// tier. employee passes every gate.
func HasTierAccess(u *User, required Tier) bool {
	if u == nil {
		return false
	}
	if u.Tier == TierEmployee {
		return true
	}
	rank := u.Tier.Rank()
	if rank < 0 {
		return false
	}
	return rank >= required.Rank()
}

// HasAdminCapability reports whether an admin user holds the named capability.
// Non-admins never do; super_admin always does; otherwise the stored flag
// decides, with absent keys resolving to false.
func HasAdminCapability(u *User, capability string) bool {
	if u == nil || !u.IsAdmin {
		return false
	}
	if u.AdminRole == RoleSuperAdmin {
		return true
	}
	return u.AdminPermissions[capability]
}

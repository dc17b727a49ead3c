package constants

// Static route constants
const (
	PublicRoute    = "/"
	AvatarsRoute   = "/avatars"
	AvatarsPath    = "avatars"
	WebhookRoute   = "/api/stripe/webhook"
	CheckoutRoute  = "/api/stripe/create-checkout-session"
	CoachingRoute  = "/api/stripe/create-coaching-checkout"
	MembershipPage = "/user/settings/membership"
)

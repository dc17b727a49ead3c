package usercontext

// Locals keys shared between the session middleware and route guards.
const (
	KeyUserContext   = "USER_CONTEXT"
	KeyFromProtected = "from_protected"
	KeyUserID        = "user_id"
	KeyUserName      = "username"
	KeyIsAdmin       = "isAdmin"
)

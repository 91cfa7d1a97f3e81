package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID         = "user_id"          // local numeric user id
	ContextKeyAuthUserID     = "auth_user_id"     // Auth Service user id
	ContextKeySessionHeaders = "session_headers"  // headers forwarded to the Auth Service
)

// Session keys used by the server-side session cache.
const (
	SessionKeyAuthUserID = "auth_user_id"
	SessionKeyUserID     = "local_user_id"
	SessionKeyCheckedAt  = "auth_checked_at"
)

const (
	// MinPasswordLength is validated locally before the set-password call is
	// relayed to the Auth Service.
	MinPasswordLength = 8

	// DefaultSlugMaxAttempts bounds the slug allocator's probe loop.
	DefaultSlugMaxAttempts = 100

	// DefaultCreateMaxRetries bounds retries of the allocate+create sequence
	// when creation loses the slug race.
	DefaultCreateMaxRetries = 3
)

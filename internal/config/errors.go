package config

const (
	// Storage errors
	ErrOpenStorageFmt = "Failed to open storage backend %q: %v"

	// Auth errors
	ErrAuthHeaderRequired     = "Authorization header required"
	ErrInvalidSignatureFormat = "Invalid signature format"
	ErrInvalidSignature       = "Invalid signature"
	ErrRefreshChallenge       = "Failed to refresh challenge"
	ErrSignInRequired         = "Sign in required"
	ErrForbidden              = "Not allowed"

	// Request errors
	ErrInternalServerError = "Internal server error"
	ErrInvalidBody         = "Invalid request body"
	ErrPostNotFound        = "Post not found"
)

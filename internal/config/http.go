package config

const (
	HCType          = "Content-Type"
	HCacheControl   = "Cache-Control"
	HAuthRedirect   = "X-Auth-Redirect"
	HActingUserID   = "X-User-Id"
	HActingUserName = "X-User-Name"
	HRequestID      = "X-Request-Id"
	HETag           = "ETag"

	CTypeJSON        = "application/json"
	CTypeEventStream = "text/event-stream"
	CTypeCSS         = "text/css; charset=utf-8"
	CTypeText        = "text/plain; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieAuthToken   = "auth_token"
	CookieSyntaxTheme = "syntax_theme"

	AuthLoginPath = "/auth/login"
)

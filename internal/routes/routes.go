// Package routes defines HTTP route constants and the middleware shared by all routes.
package routes

// API routes
const (
	APIPosts        = "/api/posts"
	APIPost         = "/api/posts/{id}"
	APIPostLike     = "/api/posts/{id}/like"
	APIPostComments = "/api/posts/{id}/comments"
	APIPostComment  = "/api/posts/{id}/comments/{commentId}"
	APIPostEvents   = "/api/posts/{id}/events"

	APISpotlight  = "/api/spotlight"
	APICategories = "/api/categories"
	APITags       = "/api/tags"

	APISyntaxThemes = "/api/syntax-themes"
)

// Static and assets
const (
	RobotsPath = "/robots.txt"
	SyntaxCSS  = "/static/syntax.css"
	HealthPath = "/healthz"
)

// Auth routes
const (
	AuthChallenge = "/auth/challenge"
	AuthVerify    = "/auth/verify"
	AuthLogout    = "/auth/logout"
	AuthLogin     = "/auth/login"
)

// Method prefixes a path with an HTTP method for ServeMux patterns.
func Method(method, path string) string {
	return method + " " + path
}

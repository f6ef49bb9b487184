// Package auth supplies the acting user of a request.
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/rs/zerolog"
)

var authLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var ErrNoUser = errors.New("no user in context")

type AuthProvider interface {
	// WithHeaderAuthorization attaches the acting user to requests that carry valid credentials.
	WithHeaderAuthorization() func(http.Handler) http.Handler

	GetUserFromSession(r *http.Request) (*model.User, error)

	// EnforceUser writes a 401 and returns an error when the request has no acting user.
	EnforceUser(w http.ResponseWriter, r *http.Request) (*model.User, error)

	RegisterRoutes(mux *http.ServeMux)
}

// NewProvider builds the provider selected by cfg.Type.
func NewProvider(cfg config.AuthConfig) (AuthProvider, error) {
	if !cfg.Enabled {
		return NoAuthProvider{}, nil
	}

	owner := OwnerFromConfig(cfg.Owner)
	switch cfg.Type {
	case "ed25519":
		return NewEd25519AuthProvider(cfg.PublicKey, cfg.HeaderName, owner)
	case "header":
		authLogger.Warn().Msg("Header authentication trusts client-supplied identity, use for development only")
		return NewHeaderAuthProvider(owner), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Type)
	}
}

func OwnerFromConfig(cfg config.OwnerConfig) *model.User {
	role := model.Role(cfg.Role)
	if role == "" {
		role = model.RoleAdmin
	}
	return &model.User{
		ID:     model.UserID(cfg.ID),
		Name:   cfg.Name,
		Avatar: cfg.Avatar,
		Role:   role,
	}
}

// WriteUnauthorized responds 401 and points the client at the sign-in page.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set(config.HAuthRedirect, config.AuthLoginPath)
	http.Error(w, config.ErrSignInRequired, http.StatusUnauthorized)
}

func userFromSession(r *http.Request) (*model.User, error) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return nil, ErrNoUser
	}
	return user, nil
}

func enforceUser(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	user, err := userFromSession(r)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Unauthorized access attempt")
		WriteUnauthorized(w)
		return nil, err
	}
	return user, nil
}

// NoAuthProvider never attaches a user. The journal is read-only apart from
// anonymous comments.
type NoAuthProvider struct{}

func (NoAuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func (NoAuthProvider) GetUserFromSession(r *http.Request) (*model.User, error) {
	return userFromSession(r)
}

func (NoAuthProvider) EnforceUser(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	return enforceUser(w, r)
}

func (NoAuthProvider) RegisterRoutes(*http.ServeMux) {}

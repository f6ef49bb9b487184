package auth

import (
	"context"

	"github.com/debemdeboas/the-journal/internal/model"
)

type contextKey string

const contextKeyUser contextKey = "user"

// ContextWithUser returns a copy of ctx carrying the acting user.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}

// UserFromContext returns the acting user, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(*model.User)
	return user, ok && user != nil
}

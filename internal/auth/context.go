package auth

import (
	"context"

	"github.com/urlstash/urlstash/internal/store"
)

type contextKey string

// UserContextKey is the context key under which the authenticated
// *store.User is stored by the token middleware.
const UserContextKey contextKey = "auth.user"

// UserFromContext returns the authenticated user, or nil if the request was
// not authenticated.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}

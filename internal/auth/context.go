package auth

import (
	"context"

	"github.com/tulisify/tulisify/internal/entities"
)

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user or nil.
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(ctxKey{}).(*entities.User)
	return user
}

package auth

import (
	"context"

	"task-manager/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the verified identity
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity stored by WithIdentity
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

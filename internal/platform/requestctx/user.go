// Package requestctx carries the authenticated operator identity through request contexts.
package requestctx

import (
	"context"
	"slices"
)

// identityContextKey is the context key for the authenticated operator identity.
type identityContextKey struct{}

// Identity describes the operator behind a request.
type Identity struct {
	UserID string
	// Permissions are the grants reported by the auth service, e.g. "delete".
	Permissions []string
}

// HasPermission reports whether the identity holds perm.
func (i Identity) HasPermission(perm string) bool {
	return slices.Contains(i.Permissions, perm)
}

// WithIdentity stores an operator identity in context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	identity.Permissions = slices.Clone(identity.Permissions)
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// WithUserID stores a user identifier without permissions in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithIdentity(ctx, Identity{UserID: userID})
}

// IdentityFromContext returns the identity stored in context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	value, ok := ctx.Value(identityContextKey{}).(Identity)
	return value, ok
}

// UserIDFromContext returns the user identifier stored in context.
func UserIDFromContext(ctx context.Context) string {
	identity, _ := IdentityFromContext(ctx)
	return identity.UserID
}

// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating auth info via context

package auth

import (
	"context"

	"github.com/2389/taskdesk/internal/store"
)

// AuthContext holds the authenticated identity for a request. Role is the
// value read from the store for this request, not from the token.
type AuthContext struct {
	UserID   int64
	Email    string
	Username string
	Role     store.Role
}

// IsAdmin returns true if the caller currently holds the admin role.
func (a *AuthContext) IsAdmin() bool {
	return a.Role == store.RoleAdmin
}

// HasRole reports whether the caller's role is one of roles.
func (a *AuthContext) HasRole(roles ...store.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present.
func FromContext(ctx context.Context) *AuthContext {
	auth, _ := ctx.Value(authContextKey{}).(*AuthContext)
	return auth
}

// MustFromContext retrieves the AuthContext from the context, panicking if not present.
func MustFromContext(ctx context.Context) *AuthContext {
	auth := FromContext(ctx)
	if auth == nil {
		panic("auth: AuthContext not found in context")
	}
	return auth
}

// ABOUTME: Authorization gate middleware for HTTP handlers
// ABOUTME: Reads the session cookie (or bearer token), verifies it and re-reads the role from the store

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/store"
)

// UserLookup resolves a user's current role.
type UserLookup interface {
	GetUserRole(ctx context.Context, id int64) (store.Role, error)
}

// ErrorWriter reports a gate failure to the client.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate authenticates requests and enforces role requirements. It performs
// exactly one store lookup per request and caches nothing.
type Gate struct {
	tokens     *TokenIssuer
	users      UserLookup
	logger     *slog.Logger
	writeError ErrorWriter
}

// NewGate creates a gate. A nil writeError writes the standard JSON envelope.
func NewGate(tokens *TokenIssuer, users UserLookup, logger *slog.Logger, writeError ErrorWriter) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if writeError == nil {
		writeError = writeEnvelopeError
	}
	return &Gate{
		tokens:     tokens,
		users:      users,
		logger:     logger.With("component", "auth-gate"),
		writeError: writeError,
	}
}

var errNotAuthenticated = apperr.Unauthenticated("not authenticated")

// extractToken returns the session token from the cookie, falling back to
// an Authorization: Bearer header for non-browser clients.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// Authenticate resolves the caller. Missing or invalid tokens and deleted
// users are Unauthenticated; store failures are Internal.
func (g *Gate) Authenticate(r *http.Request) (*AuthContext, error) {
	token := extractToken(r)
	if token == "" {
		return nil, errNotAuthenticated
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("rejected token", "error", err)
		return nil, errNotAuthenticated
	}

	role, err := g.users.GetUserRole(r.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotAuthenticated
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &AuthContext{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Role:     role,
	}, nil
}

// Require returns middleware that admits authenticated callers whose current
// role is one of roles. With no roles, any authenticated caller is admitted.
// Failures are 401 for authentication and 403 for role.
func (g *Gate) Require(roles ...store.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, err := g.Authenticate(r)
			if err != nil {
				g.writeError(w, r, err)
				return
			}

			if len(roles) > 0 && !authCtx.HasRole(roles...) {
				g.logger.Info("forbidden",
					"user_id", authCtx.UserID,
					"role", authCtx.Role,
					"path", r.URL.Path,
				)
				g.writeError(w, r, apperr.Forbidden("insufficient role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

// RequireUser admits any authenticated caller.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return g.Require()(next)
}

// RequireAdmin admits only callers whose current role is admin.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.Require(store.RoleAdmin)(next)
}

func writeEnvelopeError(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   apperr.PublicMessage(err),
	})
}

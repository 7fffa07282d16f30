// ABOUTME: Shared test helpers for admin package tests
// ABOUTME: Provides a temp SQLite store, seeded accounts and an admin auth context

package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

// createTestStore creates a migrated SQLite store in a temp dir
func createTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// createTestUser inserts an account directly through the store
func createTestUser(t *testing.T, s *store.SQLStore, username string, role store.Role) *store.User {
	t.Helper()
	u := &store.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		Role:         role,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// createAdminContext returns a context carrying an admin identity
func createAdminContext(u *store.User) context.Context {
	authCtx := &auth.AuthContext{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     store.RoleAdmin,
	}
	return auth.WithAuth(context.Background(), authCtx)
}

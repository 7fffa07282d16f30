// ABOUTME: Tests for AuthContext propagation through context.Context
// ABOUTME: Covers WithAuth/FromContext round trip and role helpers

package auth

import (
	"context"
	"testing"

	"github.com/2389/taskdesk/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestWithAuth_FromContext(t *testing.T) {
	ac := &AuthContext{UserID: 7, Username: "amy", Role: store.RoleManager}
	ctx := WithAuth(context.Background(), ac)

	assert.Same(t, ac, FromContext(ctx))
	assert.Same(t, ac, MustFromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFromContext(context.Background()) })
}

func TestAuthContext_Roles(t *testing.T) {
	admin := &AuthContext{Role: store.RoleAdmin}
	member := &AuthContext{Role: store.RoleMember}

	assert.True(t, admin.IsAdmin())
	assert.False(t, member.IsAdmin())
	assert.True(t, member.HasRole(store.RoleManager, store.RoleMember))
	assert.False(t, member.HasRole(store.RoleAdmin))
}

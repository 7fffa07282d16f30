// ABOUTME: Tests for admin user management handlers
// ABOUTME: Covers create validation, patch semantics, self-delete refusal and audit entries

package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

func ptr[T any](v T) *T { return &v }

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		Email:     "bob@example.com",
		Username:  "bob",
		Password:  "secret1",
		FirstName: "Bob",
		LastName:  "Builder",
	}
}

func TestCreateUser_Success(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	admin := createTestUser(t, s, "admin", store.RoleAdmin)
	ctx := createAdminContext(admin)

	u, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, store.RoleMember, u.Role, "role defaults to member")
	assert.True(t, auth.VerifyPassword("secret1", u.PasswordHash))

	entries, err := s.ListAuditLog(context.Background(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.AuditCreateUser, entries[0].Action)
	assert.Equal(t, admin.ID, entries[0].ActorUserID)
}

func TestCreateUser_WithPositionAndRole(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))

	pos := &store.Position{Name: "Engineer", Level: 2}
	require.NoError(t, s.CreatePosition(context.Background(), pos))

	in := validCreateInput()
	in.Role = store.RoleManager
	in.PositionID = &pos.ID
	u, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, store.RoleManager, u.Role)
	require.NotNil(t, u.PositionName)
	assert.Equal(t, "Engineer", *u.PositionName)
}

func TestCreateUser_Validation(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))

	tests := []struct {
		name   string
		mutate func(*CreateUserInput)
	}{
		{"missing email", func(in *CreateUserInput) { in.Email = "" }},
		{"missing last name", func(in *CreateUserInput) { in.LastName = "  " }},
		{"short password", func(in *CreateUserInput) { in.Password = "abc" }},
		{"bad role", func(in *CreateUserInput) { in.Role = store.Role(9) }},
		{"unknown position", func(in *CreateUserInput) { in.PositionID = ptr(int64(404)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestCreateUser_DuplicateIsValidationError(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))

	_, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	dup := validCreateInput()
	dup.Username = "someone-else"
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, msgUserExists, apperr.PublicMessage(err))
}

func TestCreateUser_EmailIsCaseInsensitive(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))

	in := validCreateInput()
	in.Email = " Bob@Example.COM "
	u, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)

	dup := validCreateInput()
	dup.Username = "bob2"
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	updated, err := svc.Update(ctx, UpdateUserInput{UserID: u.ID, Email: ptr("BOB.B@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "bob.b@example.com", updated.Email)
}

func TestUpdateUser_Patch(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))
	target := createTestUser(t, s, "carol", store.RoleMember)

	u, err := svc.Update(ctx, UpdateUserInput{
		UserID:   target.ID,
		Role:     ptr(store.RoleManager),
		Password: ptr("new-secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, store.RoleManager, u.Role)
	assert.Equal(t, "carol", u.Username, "unspecified fields are unchanged")
	assert.True(t, auth.VerifyPassword("new-secret", u.PasswordHash))
}

func TestUpdateUser_Errors(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	ctx := createAdminContext(createTestUser(t, s, "admin", store.RoleAdmin))
	target := createTestUser(t, s, "carol", store.RoleMember)

	_, err := svc.Update(ctx, UpdateUserInput{Role: ptr(store.RoleAdmin)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "missing id")

	_, err = svc.Update(ctx, UpdateUserInput{UserID: target.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "nothing to update")

	_, err = svc.Update(ctx, UpdateUserInput{UserID: target.ID, Role: ptr(store.Role(7))})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "invalid role")

	_, err = svc.Update(ctx, UpdateUserInput{UserID: target.ID, PositionID: ptr(int64(555))})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "invalid position")

	_, err = svc.Update(ctx, UpdateUserInput{UserID: 9999, FirstName: ptr("X")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Update(ctx, UpdateUserInput{UserID: target.ID, Username: ptr("admin")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDeleteUser(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)
	admin := createTestUser(t, s, "admin", store.RoleAdmin)
	ctx := createAdminContext(admin)
	target := createTestUser(t, s, "dave", store.RoleMember)

	err := svc.Delete(ctx, admin.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "self delete")

	err = svc.Delete(ctx, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, target.ID))

	_, err = s.GetUser(context.Background(), target.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, target.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	entries, err := svc.Audit(ctx, store.AuditFilter{Action: ptr(store.AuditDeleteUser)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0].TargetType)
}

func TestUserService_RequiresAuthContext(t *testing.T) {
	s := createTestStore(t)
	svc := NewUserService(s, nil)

	assert.Panics(t, func() {
		_, _ = svc.Create(context.Background(), validCreateInput())
	})
}

// ABOUTME: Tests for the account service against a real SQLite store
// ABOUTME: Covers registration validation, credential checks and profile edits

package account

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

var testSecret = []byte("account-test-secret-at-least-32-bytes")

func setupService(t *testing.T) (*Service, *store.SQLStore, *auth.TokenIssuer) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "account.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokens, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)
	return NewService(s, tokens), s, tokens
}

func register(t *testing.T, svc *Service, email, username string) *store.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: username,
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Email:    "  alice@example.com ",
		Username: " alice ",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, store.RoleMember, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	stored, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("secret1", stored.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := setupService(t)

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing email", RegisterInput{Username: "a", Password: "secret1"}, msgFieldsRequired},
		{"blank username", RegisterInput{Email: "a@x", Username: "   ", Password: "secret1"}, msgFieldsRequired},
		{"missing password", RegisterInput{Email: "a@x", Username: "a"}, msgFieldsRequired},
		{"short password", RegisterInput{Email: "a@x", Username: "a", Password: "12345"}, msgPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.PublicMessage(err))
		})
	}
}

func TestRegister_ShortPasswordInsertsNothing(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "short@example.com", Username: "short", Password: "abc"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.GetUserByEmail(ctx, "short@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	exists, err := s.UserExists(ctx, "short@example.com", "short")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_EmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	u := register(t, svc, " Bob@Example.com", "bob")
	assert.Equal(t, "bob@example.com", u.Email)

	_, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "bob2", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	logged, _, err := svc.Login(ctx, "BOB@EXAMPLE.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
}

func TestRegister_SixCharPasswordAccepted(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x", Username: "a", Password: "123456"})
	require.NoError(t, err)
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _, _ := setupService(t)
	register(t, svc, "alice@example.com", "alice")

	_, err := svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Username: "other", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, msgEmailExists, apperr.PublicMessage(err))

	_, err = svc.Register(context.Background(), RegisterInput{Email: "other@example.com", Username: "alice", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, msgUsernameExists, apperr.PublicMessage(err))
}

func TestLogin(t *testing.T) {
	svc, _, tokens := setupService(t)
	created := register(t, svc, "alice@example.com", "alice")

	u, token, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := setupService(t)
	register(t, svc, "alice@example.com", "alice")

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "secret1")
	_, _, wrongErr := svc.Login(context.Background(), "alice@example.com", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(wrongErr))
	assert.Equal(t, apperr.PublicMessage(unknownErr), apperr.PublicMessage(wrongErr))
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, err := svc.Login(context.Background(), "", "secret1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = svc.Login(context.Background(), "alice@example.com", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMe(t *testing.T) {
	svc, _, _ := setupService(t)
	created := register(t, svc, "alice@example.com", "alice")

	u, err := svc.Me(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Me(context.Background(), 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := setupService(t)
	created := register(t, svc, "alice@example.com", "alice")
	ctx := context.Background()

	avatar := "data:image/png;base64,AAAA"
	u, err := svc.UpdateProfile(ctx, created.ID, ProfileInput{FirstName: " Alice ", LastName: "Liddell", Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "Liddell", u.LastName)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, avatar, *u.Avatar)

	u, err = svc.UpdateProfile(ctx, created.ID, ProfileInput{FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, err)
	assert.Nil(t, u.Avatar)

	_, err = svc.UpdateProfile(ctx, created.ID, ProfileInput{FirstName: "  ", LastName: "Liddell"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateProfile(ctx, 9999, ProfileInput{FirstName: "A", LastName: "B"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateAvatar(t *testing.T) {
	svc, _, _ := setupService(t)
	created := register(t, svc, "alice@example.com", "alice")
	ctx := context.Background()

	avatar := "data:image/png;base64,BBBB"
	u, err := svc.UpdateAvatar(ctx, created.ID, &avatar)
	require.NoError(t, err)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, avatar, *u.Avatar)

	u, err = svc.UpdateAvatar(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, u.Avatar)
}

// ABOUTME: Self-service account operations: register, login and profile edits
// ABOUTME: Maps store sentinels onto apperr kinds so handlers only translate to HTTP

package account

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

// Store defines the persistence operations the account service needs.
type Store interface {
	CreateUser(ctx context.Context, u *store.User) error
	GetUser(ctx context.Context, id int64) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	UpdateUser(ctx context.Context, id int64, upd store.UserUpdate) (*store.User, error)
}

// Messages returned to callers. Login uses one message for every
// credential failure so responses don't reveal which emails exist.
const (
	msgFieldsRequired      = "email, username and password are required"
	msgPasswordTooShort    = "password must be at least 6 characters"
	msgEmailExists         = "user with this email already exists"
	msgUsernameExists      = "username already taken"
	msgLoginFieldsRequired = "email and password are required"
	msgInvalidCredentials  = "invalid email or password"
	msgNamesRequired       = "first name and last name are required"
	msgUserNotFound        = "user not found"
)

// Service implements registration, login and self-service profile edits.
type Service struct {
	store  Store
	tokens *auth.TokenIssuer
}

// NewService creates an account service.
func NewService(s Store, tokens *auth.TokenIssuer) *Service {
	return &Service{store: s, tokens: tokens}
}

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a member account. Email is trimmed and lowercased and the
// username trimmed; the password is taken verbatim.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.User, error) {
	email := store.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return nil, apperr.Validation(msgFieldsRequired)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Validation(msgPasswordTooShort)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &store.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         store.DefaultRole,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, mapUserWriteError(err)
	}
	return u, nil
}

// Login checks credentials and returns the user with a freshly issued
// session token.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	email = store.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.Validation(msgLoginFieldsRequired)
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same bcrypt work as a real comparison.
		auth.VerifyPassword(password, dummyHash())
		return nil, "", apperr.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return nil, "", apperr.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Username)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return u, token, nil
}

// Me returns the caller's current record.
func (s *Service) Me(ctx context.Context, userID int64) (*store.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// ProfileInput carries a self-service profile edit. A nil Avatar clears it.
type ProfileInput struct {
	FirstName string
	LastName  string
	Avatar    *string
}

// UpdateProfile sets the caller's names and avatar directly.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*store.User, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, apperr.Validation(msgNamesRequired)
	}

	upd := store.UserUpdate{FirstName: &first, LastName: &last}
	setAvatar(&upd, in.Avatar)
	return s.update(ctx, userID, upd)
}

// UpdateAvatar replaces the caller's avatar. Nil or empty clears it.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, avatar *string) (*store.User, error) {
	var upd store.UserUpdate
	setAvatar(&upd, avatar)
	return s.update(ctx, userID, upd)
}

func (s *Service) update(ctx context.Context, userID int64, upd store.UserUpdate) (*store.User, error) {
	u, err := s.store.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, mapUserWriteError(err)
	}
	return u, nil
}

func setAvatar(upd *store.UserUpdate, avatar *string) {
	if avatar == nil || *avatar == "" {
		upd.ClearAvatar = true
		return
	}
	upd.Avatar = avatar
}

func mapUserWriteError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return apperr.Wrap(apperr.KindConflict, msgEmailExists, err)
	case errors.Is(err, store.ErrUsernameExists):
		return apperr.Wrap(apperr.KindConflict, msgUsernameExists, err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgUserNotFound)
	default:
		return apperr.Internal(err)
	}
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash returns a valid bcrypt hash of a throwaway password.
func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = auth.HashPassword("taskdesk-dummy-password")
	})
	return dummy
}

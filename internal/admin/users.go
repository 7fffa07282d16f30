// ABOUTME: Admin handlers for user account management
// ABOUTME: Implements list, create, update and delete with an audit entry per mutation

package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/store"
)

// UserStore defines the interface for user management operations
type UserStore interface {
	CreateUser(ctx context.Context, u *store.User) error
	GetUser(ctx context.Context, id int64) (*store.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
	UpdateUser(ctx context.Context, id int64, upd store.UserUpdate) (*store.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AuditStore
}

// auditAppender is the write half of the audit log.
type auditAppender interface {
	AppendAuditLog(ctx context.Context, e *store.AuditEntry) error
}

// AuditStore appends and reads audit entries.
type AuditStore interface {
	auditAppender
	ListAuditLog(ctx context.Context, f store.AuditFilter) ([]store.AuditEntry, error)
}

const (
	msgCreateFieldsRequired = "email, username, password, first name and last name are required"
	msgPasswordTooShort     = "password must be at least 6 characters"
	msgUserExists           = "user with this email or username already exists"
	msgEmailExists          = "user with this email already exists"
	msgUsernameExists       = "username already taken"
	msgUserIDRequired       = "user id is required"
	msgInvalidRole          = "invalid role"
	msgInvalidReference     = "invalid role or position"
	msgUserNotFound         = "user not found"
	msgSelfDelete           = "cannot delete your own account"
	msgNothingToUpdate      = "no fields to update"
)

// UserService implements admin user management
type UserService struct {
	store  UserStore
	logger *slog.Logger
}

// NewUserService creates a UserService
func NewUserService(s UserStore, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{store: s, logger: logger.With("component", "admin.users")}
}

// List returns every user ordered by username
func (s *UserService) List(ctx context.Context) ([]*store.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// CreateUserInput carries the fields for an admin-created account.
// A zero Role means member.
type CreateUserInput struct {
	Email      string
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Role       store.Role
	PositionID *int64
}

// Create adds an account on an admin's behalf
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*store.User, error) {
	authCtx := auth.MustFromContext(ctx)

	email := store.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if email == "" || username == "" || in.Password == "" || first == "" || last == "" {
		return nil, apperr.Validation(msgCreateFieldsRequired)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Validation(msgPasswordTooShort)
	}

	role := in.Role
	if role == 0 {
		role = store.DefaultRole
	}
	if !role.Valid() {
		return nil, apperr.Validation(msgInvalidRole)
	}

	// Duplicates caught here are a plain validation failure; a racing
	// insert that slips past still surfaces as a conflict below.
	exists, err := s.store.UserExists(ctx, email, username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Validation(msgUserExists)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &store.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         role,
		PositionID:   in.PositionID,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, mapUserError(err)
	}

	s.audit(ctx, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditCreateUser,
		TargetType:  "user",
		TargetID:    strconv.FormatInt(u.ID, 10),
		Detail: map[string]any{
			"email":    u.Email,
			"username": u.Username,
			"role":     u.Role.String(),
		},
	})

	// Re-read to pick up the joined position name
	created, err := s.store.GetUser(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return created, nil
}

// UpdateUserInput is a partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	UserID        int64
	Email         *string
	Username      *string
	Password      *string
	FirstName     *string
	LastName      *string
	Role          *store.Role
	PositionID    *int64
	ClearPosition bool
}

// Update patches an existing account. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, in UpdateUserInput) (*store.User, error) {
	authCtx := auth.MustFromContext(ctx)

	if in.UserID <= 0 {
		return nil, apperr.Validation(msgUserIDRequired)
	}

	var upd store.UserUpdate
	changed := []string{}
	if in.Email != nil {
		v := store.NormalizeEmail(*in.Email)
		if v == "" {
			return nil, apperr.Validation("email cannot be empty")
		}
		upd.Email = &v
		changed = append(changed, "email")
	}
	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		if v == "" {
			return nil, apperr.Validation("username cannot be empty")
		}
		upd.Username = &v
		changed = append(changed, "username")
	}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		upd.FirstName = &v
		changed = append(changed, "first_name")
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		upd.LastName = &v
		changed = append(changed, "last_name")
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < auth.MinPasswordLength {
			return nil, apperr.Validation(msgPasswordTooShort)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		upd.PasswordHash = &hash
		changed = append(changed, "password")
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Validation(msgInvalidRole)
		}
		upd.Role = in.Role
		changed = append(changed, "role")
	}
	switch {
	case in.ClearPosition:
		upd.ClearPosition = true
		changed = append(changed, "position_id")
	case in.PositionID != nil:
		upd.PositionID = in.PositionID
		changed = append(changed, "position_id")
	}
	if upd.Empty() {
		return nil, apperr.Validation(msgNothingToUpdate)
	}

	u, err := s.store.UpdateUser(ctx, in.UserID, upd)
	if err != nil {
		return nil, mapUserError(err)
	}

	s.audit(ctx, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditUpdateUser,
		TargetType:  "user",
		TargetID:    strconv.FormatInt(u.ID, 10),
		Detail:      map[string]any{"fields": changed},
	})

	return u, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	authCtx := auth.MustFromContext(ctx)

	if userID <= 0 {
		return apperr.Validation(msgUserIDRequired)
	}
	if userID == authCtx.UserID {
		return apperr.Validation(msgSelfDelete)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return mapUserError(err)
	}

	s.audit(ctx, &store.AuditEntry{
		ActorUserID: authCtx.UserID,
		Action:      store.AuditDeleteUser,
		TargetType:  "user",
		TargetID:    strconv.FormatInt(userID, 10),
	})
	return nil
}

// Audit lists audit entries, newest first
func (s *UserService) Audit(ctx context.Context, f store.AuditFilter) ([]store.AuditEntry, error) {
	entries, err := s.store.ListAuditLog(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func (s *UserService) audit(ctx context.Context, e *store.AuditEntry) {
	appendAudit(ctx, s.store, s.logger, e)
}

func appendAudit(ctx context.Context, a auditAppender, logger *slog.Logger, e *store.AuditEntry) {
	if err := a.AppendAuditLog(ctx, e); err != nil {
		logger.Warn("failed to append audit entry", "action", e.Action, "target", e.TargetID, "error", err)
	}
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return apperr.Wrap(apperr.KindConflict, msgEmailExists, err)
	case errors.Is(err, store.ErrUsernameExists):
		return apperr.Wrap(apperr.KindConflict, msgUsernameExists, err)
	case errors.Is(err, store.ErrInvalidReference):
		return apperr.Wrap(apperr.KindValidation, msgInvalidReference, err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgUserNotFound)
	default:
		return apperr.Internal(err)
	}
}

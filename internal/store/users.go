// ABOUTME: User persistence: the credential store behind registration, login and admin
// ABOUTME: Role lookups here back the per-request authorization gate

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const userColumns = `
	u.id, u.email, u.username, u.password_hash, u.first_name, u.last_name, u.avatar,
	u.role_id, u.position_id, p.name, u.created_at, u.updated_at
`

const userFrom = `
	FROM users u
	LEFT JOIN positions p ON p.id = u.position_id
`

// NormalizeEmail trims and lowercases an address. Emails are stored and
// looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user and fills in ID and timestamps.
// Returns ErrEmailExists or ErrUsernameExists on duplicates and
// ErrInvalidReference for an unknown role or position.
func (s *SQLStore) CreateUser(ctx context.Context, u *User) error {
	if u.Role == 0 {
		u.Role = DefaultRole
	}
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (email, username, password_hash, first_name, last_name, avatar, role_id, position_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, s.rebind(query),
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Avatar,
		int(u.Role),
		u.PositionID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	).Scan(&u.ID)
	if err != nil {
		if mapped := userConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", u.ID, "username", u.Username, "role", u.Role)
	return nil
}

// GetUser retrieves a user by ID, including the position name.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLStore) GetUser(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.id = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email.
// Returns ErrNotFound if no user has that email.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.email = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), email))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return u, nil
}

// GetUserRole returns the current role of a user. It is read on every
// privileged request and never cached.
func (s *SQLStore) GetUserRole(ctx context.Context, id int64) (Role, error) {
	var role int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT role_id FROM users WHERE id = ?`), id).Scan(&role)
	if isNoRows(err) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying user role: %w", err)
	}
	return Role(role), nil
}

// UserExists reports whether any user already has the email or the username.
func (s *SQLStore) UserExists(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`),
		email, username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return n > 0, nil
}

// CountUsersByRole returns how many users hold the given role.
func (s *SQLStore) CountUsersByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM users WHERE role_id = ?`), int(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// ListUsers returns all users ordered by username.
func (s *SQLStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + userFrom + ` ORDER BY u.username`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser applies a partial update and returns the stored result.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLStore) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	var set setClause
	if upd.Email != nil {
		set.add("email", *upd.Email)
	}
	if upd.Username != nil {
		set.add("username", *upd.Username)
	}
	if upd.PasswordHash != nil {
		set.add("password_hash", *upd.PasswordHash)
	}
	if upd.FirstName != nil {
		set.add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		set.add("last_name", *upd.LastName)
	}
	switch {
	case upd.ClearAvatar:
		set.add("avatar", nil)
	case upd.Avatar != nil:
		set.add("avatar", *upd.Avatar)
	}
	if upd.Role != nil {
		set.add("role_id", int(*upd.Role))
	}
	switch {
	case upd.ClearPosition:
		set.add("position_id", nil)
	case upd.PositionID != nil:
		set.add("position_id", *upd.PositionID)
	}
	set.add("updated_at", formatTime(s.now()))

	query := `UPDATE users SET ` + set.String() + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), append(set.args, id)...)
	if err != nil {
		if mapped := userConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("updated user", "id", id)
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user. Tasks keep their rows with the user
// references cleared; profile change requests are kept as history.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info("deleted user", "id", id)
	return nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		u                    User
		role                 int
		avatar, positionName sql.NullString
		positionID           sql.NullInt64
		createdAt, updatedAt string
	)
	if err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&avatar,
		&role,
		&positionID,
		&positionName,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = Role(role)
	u.Avatar = nullStringPtr(avatar)
	u.PositionID = nullInt64Ptr(positionID)
	u.PositionName = nullStringPtr(positionName)

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

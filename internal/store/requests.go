// ABOUTME: Profile change request persistence and the atomic review transition
// ABOUTME: pending -> approved|rejected is a guarded update; approval also renames the user

package store

import (
	"context"
	"database/sql"
	"fmt"
)

const requestSelect = `
	SELECT
		r.id, r.user_id, r.first_name, r.last_name, r.status, r.created_at,
		r.reviewed_by, r.reviewed_at, r.reject_reason,
		u.username, u.first_name, u.last_name, rv.username
	FROM profile_change_requests r
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN users rv ON rv.id = r.reviewed_by
`

// CreateProfileRequest inserts a pending request and fills in ID, Status and CreatedAt.
// The user row is not touched.
func (s *SQLStore) CreateProfileRequest(ctx context.Context, r *ProfileChangeRequest) error {
	r.Status = RequestPending
	r.CreatedAt = s.now()

	query := `
		INSERT INTO profile_change_requests (user_id, first_name, last_name, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, s.rebind(query),
		r.UserID,
		r.FirstName,
		r.LastName,
		string(r.Status),
		formatTime(r.CreatedAt),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("inserting profile request: %w", err)
	}

	s.logger.Info("created profile request", "id", r.ID, "user_id", r.UserID)
	return nil
}

// GetProfileRequest retrieves a request by ID.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLStore) GetProfileRequest(ctx context.Context, id int64) (*ProfileChangeRequest, error) {
	r, err := scanProfileRequest(s.db.QueryRowContext(ctx, s.rebind(requestSelect+` WHERE r.id = ?`), id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile request: %w", err)
	}
	return r, nil
}

// ListProfileRequests returns requests matching the filter, newest first.
// Requests whose user was deleted are still returned with nil user names.
func (s *SQLStore) ListProfileRequests(ctx context.Context, f ProfileRequestFilter) ([]*ProfileChangeRequest, error) {
	var where whereClause
	if f.UserID != nil {
		where.add("r.user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		where.add("r.status = ?", string(*f.Status))
	}

	query := requestSelect + where.String() + ` ORDER BY r.created_at DESC, r.id DESC`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), where.args...)
	if err != nil {
		return nil, fmt.Errorf("querying profile requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	requests := []*ProfileChangeRequest{}
	for rows.Next() {
		r, err := scanProfileRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile requests: %w", err)
	}
	return requests, nil
}

// ReviewProfileRequest moves a pending request to its terminal outcome in one
// transaction. The status change is conditional on status = 'pending', so of
// two concurrent reviews exactly one commits and the other gets ErrNotPending.
// On approval the proposed names replace the user's first and last name; if
// that user no longer exists the whole review is rolled back with ErrNotPending.
func (s *SQLStore) ReviewProfileRequest(ctx context.Context, p ReviewParams) (*ProfileChangeRequest, error) {
	if !p.Outcome.Terminal() {
		return nil, fmt.Errorf("invalid review outcome %q", p.Outcome)
	}
	if p.ReviewedAt.IsZero() {
		p.ReviewedAt = s.now()
	}
	reviewedAt := formatTime(p.ReviewedAt)

	var userID int64
	var first, last string
	err := s.withTx(ctx, func(tx dbtx) error {
		query := `
			UPDATE profile_change_requests
			SET status = ?, reviewed_by = ?, reviewed_at = ?, reject_reason = ?
			WHERE id = ? AND status = 'pending'
			RETURNING user_id, first_name, last_name
		`
		err := tx.QueryRowContext(ctx, s.rebind(query),
			string(p.Outcome),
			p.ReviewerID,
			reviewedAt,
			p.RejectReason,
			p.RequestID,
		).Scan(&userID, &first, &last)
		if isNoRows(err) {
			return ErrNotPending
		}
		if err != nil {
			return fmt.Errorf("transitioning profile request: %w", err)
		}

		if p.Outcome != RequestApproved {
			return nil
		}

		res, err := tx.ExecContext(ctx,
			s.rebind(`UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`),
			first, last, reviewedAt, userID,
		)
		if err != nil {
			return fmt.Errorf("applying profile change: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reviewed profile request",
		"id", p.RequestID,
		"outcome", p.Outcome,
		"reviewer", p.ReviewerID,
		"user_id", userID,
	)
	return s.GetProfileRequest(ctx, p.RequestID)
}

func scanProfileRequest(scanner interface{ Scan(dest ...any) error }) (*ProfileChangeRequest, error) {
	var (
		r                             ProfileChangeRequest
		status, createdAt             string
		reviewedBy                    sql.NullInt64
		reviewedAt, reason            sql.NullString
		username, userFirst, userLast sql.NullString
		reviewerName                  sql.NullString
	)
	if err := scanner.Scan(
		&r.ID, &r.UserID, &r.FirstName, &r.LastName, &status, &createdAt,
		&reviewedBy, &reviewedAt, &reason,
		&username, &userFirst, &userLast, &reviewerName,
	); err != nil {
		return nil, err
	}

	r.Status = RequestStatus(status)
	r.ReviewedBy = nullInt64Ptr(reviewedBy)
	r.RejectReason = nullStringPtr(reason)
	r.Username = nullStringPtr(username)
	r.UserFirstName = nullStringPtr(userFirst)
	r.UserLastName = nullStringPtr(userLast)
	r.ReviewerUsername = nullStringPtr(reviewerName)

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.ReviewedAt, err = parseNullTime(reviewedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// ABOUTME: Audit log entity and store methods for tracking administrative actions
// ABOUTME: Records who did what to which resource for compliance and debugging

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditCreateUser     AuditAction = "create_user"
	AuditUpdateUser     AuditAction = "update_user"
	AuditDeleteUser     AuditAction = "delete_user"
	AuditCreatePosition AuditAction = "create_position"
	AuditUpdatePosition AuditAction = "update_position"
	AuditDeletePosition AuditAction = "delete_position"
	AuditApproveRequest AuditAction = "approve_profile_request"
	AuditRejectRequest  AuditAction = "reject_profile_request"
	AuditBootstrapAdmin AuditAction = "bootstrap_admin"
)

// ValidAuditActions lists all valid audit actions.
var ValidAuditActions = []AuditAction{
	AuditCreateUser,
	AuditUpdateUser,
	AuditDeleteUser,
	AuditCreatePosition,
	AuditUpdatePosition,
	AuditDeletePosition,
	AuditApproveRequest,
	AuditRejectRequest,
	AuditBootstrapAdmin,
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID          string         // UUID v4
	ActorUserID int64          // who performed the action
	Action      AuditAction    // what action was performed
	TargetType  string         // "user", "position", "profile_request"
	TargetID    string         // ID of the affected resource
	Timestamp   time.Time      // when it happened
	Detail      map[string]any // additional context
}

// AuditFilter specifies filtering options for listing audit entries.
type AuditFilter struct {
	Since       *time.Time
	ActorUserID *int64
	Action      *AuditAction
	TargetType  *string
	Limit       int // default 100, max 1000
}

// AppendAuditLog appends a new entry to the audit log.
// Generates ID and Timestamp if not set.
func (s *SQLStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	var detailJSON *string
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO audit_log (audit_id, actor_user_id, action, target_type, target_id, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		e.ID,
		e.ActorUserID,
		string(e.Action),
		e.TargetType,
		e.TargetID,
		formatTime(e.Timestamp),
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	s.logger.Debug("appended audit log",
		"id", e.ID,
		"actor", e.ActorUserID,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
	)
	return nil
}

// normalizeAuditLimit applies default (100) and cap (1000) to audit limit.
func normalizeAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// ListAuditLog returns audit entries matching the filter criteria, newest first.
func (s *SQLStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	var where whereClause
	if f.Since != nil {
		where.add("ts >= ?", formatTime(*f.Since))
	}
	if f.ActorUserID != nil {
		where.add("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		where.add("action = ?", string(*f.Action))
	}
	if f.TargetType != nil {
		where.add("target_type = ?", *f.TargetType)
	}

	query := `
		SELECT audit_id, actor_user_id, action, target_type, target_id, ts, detail_json
		FROM audit_log` + where.String() + `
		ORDER BY ts DESC
		LIMIT ?`

	args := append(where.args, normalizeAuditLimit(f.Limit))
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []AuditEntry{}
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, nil
}

// scanAuditEntry scans a row into an AuditEntry.
func scanAuditEntry(scanner interface{ Scan(dest ...any) error }) (AuditEntry, error) {
	var (
		e          AuditEntry
		action, ts string
		detailJSON sql.NullString
	)

	if err := scanner.Scan(
		&e.ID,
		&e.ActorUserID,
		&action,
		&e.TargetType,
		&e.TargetID,
		&ts,
		&detailJSON,
	); err != nil {
		return e, fmt.Errorf("scanning audit entry: %w", err)
	}

	e.Action = AuditAction(action)
	var err error
	if e.Timestamp, err = parseTime(ts); err != nil {
		return e, err
	}

	if detailJSON.Valid {
		if err := json.Unmarshal([]byte(detailJSON.String), &e.Detail); err != nil {
			return e, fmt.Errorf("unmarshaling detail: %w", err)
		}
	}
	return e, nil
}

// ABOUTME: Task and task status persistence
// ABOUTME: Tasks join their status and the usernames of creator and assignee on read

package store

import (
	"context"
	"database/sql"
	"fmt"
)

const taskSelect = `
	SELECT
		t.id, t.title, t.description, t.status_id, t.priority,
		t.created_by, t.assigned_to, t.updated_by, t.due_date, t.completed_at,
		t.created_at, t.updated_at,
		s.name, s.color, uc.username, ua.username
	FROM tasks t
	JOIN task_statuses s ON s.id = t.status_id
	LEFT JOIN users uc ON uc.id = t.created_by
	LEFT JOIN users ua ON ua.id = t.assigned_to
`

// ListStatuses returns all task statuses in board order.
func (s *SQLStore) ListStatuses(ctx context.Context) ([]*TaskStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, description, sort_order
		FROM task_statuses
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	statuses := []*TaskStatus{}
	for rows.Next() {
		var (
			st   TaskStatus
			desc sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Color, &desc, &st.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning status: %w", err)
		}
		st.Description = nullStringPtr(desc)
		statuses = append(statuses, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statuses: %w", err)
	}
	return statuses, nil
}

// CreateTask inserts a task and returns it as stored, with joined names.
// Returns ErrInvalidReference for an unknown status or user.
func (s *SQLStore) CreateTask(ctx context.Context, t *Task) (*Task, error) {
	if t.StatusID == 0 {
		t.StatusID = DefaultStatusID
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	now := formatTime(s.now())

	query := `
		INSERT INTO tasks (title, description, status_id, priority, created_by, assigned_to, updated_by, due_date, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(query),
		t.Title,
		t.Description,
		t.StatusID,
		string(t.Priority),
		t.CreatedBy,
		t.AssignedTo,
		t.CreatedBy,
		formatTimePtr(t.DueDate),
		formatTimePtr(t.CompletedAt),
		now,
		now,
	).Scan(&id)
	if err != nil {
		if foreignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("inserting task: %w", err)
	}

	s.logger.Debug("created task", "id", id, "title", t.Title)
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by ID.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLStore) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, s.rebind(taskSelect+` WHERE t.id = ?`), id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// ListTasks returns tasks matching the filter, newest first.
func (s *SQLStore) ListTasks(ctx context.Context, f TaskFilter) ([]*Task, error) {
	var where whereClause
	if f.StatusName != "" {
		where.add("s.name = ?", f.StatusName)
	}
	if f.Priority != "" {
		where.add("t.priority = ?", string(f.Priority))
	}
	if f.AssignedTo != nil {
		where.add("t.assigned_to = ?", *f.AssignedTo)
	}

	query := taskSelect + where.String() + ` ORDER BY t.created_at DESC, t.id DESC`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), where.args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update, stamping updated_by and updated_at.
// Returns ErrNotFound or ErrInvalidReference.
func (s *SQLStore) UpdateTask(ctx context.Context, id int64, upd TaskUpdate, updatedBy int64) (*Task, error) {
	var set setClause
	if upd.Title != nil {
		set.add("title", *upd.Title)
	}
	switch {
	case upd.ClearDescription:
		set.add("description", nil)
	case upd.Description != nil:
		set.add("description", *upd.Description)
	}
	if upd.StatusID != nil {
		set.add("status_id", *upd.StatusID)
	}
	if upd.Priority != nil {
		set.add("priority", string(*upd.Priority))
	}
	switch {
	case upd.ClearAssignee:
		set.add("assigned_to", nil)
	case upd.AssignedTo != nil:
		set.add("assigned_to", *upd.AssignedTo)
	}
	switch {
	case upd.ClearDueDate:
		set.add("due_date", nil)
	case upd.DueDate != nil:
		set.add("due_date", formatTime(*upd.DueDate))
	}
	switch {
	case upd.ClearCompletedAt:
		set.add("completed_at", nil)
	case upd.CompletedAt != nil:
		set.add("completed_at", formatTime(*upd.CompletedAt))
	}
	set.add("updated_by", updatedBy)
	set.add("updated_at", formatTime(s.now()))

	query := `UPDATE tasks SET ` + set.String() + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), append(set.args, id)...)
	if err != nil {
		if foreignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("updated task", "id", id, "by", updatedBy)
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted task", "id", id)
	return nil
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		t                           Task
		priority                    string
		desc                        sql.NullString
		createdBy, assigned, upd    sql.NullInt64
		dueDate, completedAt        sql.NullString
		createdAt, updatedAt        string
		createdByName, assigneeName sql.NullString
	)
	if err := scanner.Scan(
		&t.ID, &t.Title, &desc, &t.StatusID, &priority,
		&createdBy, &assigned, &upd, &dueDate, &completedAt,
		&createdAt, &updatedAt,
		&t.StatusName, &t.StatusColor, &createdByName, &assigneeName,
	); err != nil {
		return nil, err
	}

	t.Priority = Priority(priority)
	t.Description = nullStringPtr(desc)
	t.CreatedBy = nullInt64Ptr(createdBy)
	t.AssignedTo = nullInt64Ptr(assigned)
	t.UpdatedBy = nullInt64Ptr(upd)
	t.CreatedByName = nullStringPtr(createdByName)
	t.AssignedToName = nullStringPtr(assigneeName)

	var err error
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

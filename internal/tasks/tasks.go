// ABOUTME: Task board operations: list with filters, create, read, patch and delete
// ABOUTME: Parses due dates, validates priorities and renders markdown descriptions

package tasks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/store"
)

// Store defines the persistence operations the task board needs.
type Store interface {
	ListStatuses(ctx context.Context) ([]*store.TaskStatus, error)
	CreateTask(ctx context.Context, t *store.Task) (*store.Task, error)
	GetTask(ctx context.Context, id int64) (*store.Task, error)
	ListTasks(ctx context.Context, f store.TaskFilter) ([]*store.Task, error)
	UpdateTask(ctx context.Context, id int64, upd store.TaskUpdate, updatedBy int64) (*store.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

const (
	msgTitleRequired   = "title is required"
	msgInvalidPriority = "priority must be low, medium, high or urgent"
	msgInvalidAssignee = "assigned_to must be a user id"
	msgInvalidDate     = "dates must be YYYY-MM-DD or RFC 3339"
	msgInvalidRef      = "unknown status or user"
	msgTaskNotFound    = "task not found"
	msgNothingToUpdate = "no fields to update"
)

// dateOnly is the short due date form accepted alongside RFC 3339.
const dateOnly = "2006-01-02"

// Service implements the task board.
type Service struct {
	store    Store
	renderer *Renderer
}

// NewService creates a task service.
func NewService(s Store) *Service {
	return &Service{store: s, renderer: NewRenderer()}
}

// Statuses returns the workflow columns in display order.
func (s *Service) Statuses(ctx context.Context) ([]*store.TaskStatus, error) {
	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return statuses, nil
}

// ListQuery carries raw filter values from a query string.
// Empty values match everything.
type ListQuery struct {
	Status     string
	Priority   string
	AssignedTo string
}

// List returns tasks matching the query, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*store.Task, error) {
	filter := store.TaskFilter{StatusName: strings.TrimSpace(q.Status)}

	if q.Priority != "" {
		p := store.Priority(q.Priority)
		if !p.Valid() {
			return nil, apperr.Validation(msgInvalidPriority)
		}
		filter.Priority = p
	}
	if q.AssignedTo != "" {
		id, err := strconv.ParseInt(q.AssignedTo, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation(msgInvalidAssignee)
		}
		filter.AssignedTo = &id
	}

	list, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// Detail is a single task with its description rendered to HTML.
type Detail struct {
	*store.Task
	DescriptionHTML string
}

// Get returns one task with a rendered description.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, mapTaskError(err)
	}

	d := &Detail{Task: t}
	if t.Description != nil {
		html, err := s.renderer.Render(*t.Description)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		d.DescriptionHTML = html
	}
	return d, nil
}

// CreateInput carries a new task. Zero StatusID and empty Priority take
// the defaults (todo, medium).
type CreateInput struct {
	Title       string
	Description *string
	StatusID    int64
	Priority    string
	AssignedTo  *int64
	DueDate     string
}

// Create adds a task on behalf of createdBy.
func (s *Service) Create(ctx context.Context, createdBy int64, in CreateInput) (*store.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation(msgTitleRequired)
	}

	t := &store.Task{
		Title:       title,
		Description: nonEmpty(in.Description),
		StatusID:    in.StatusID,
		CreatedBy:   &createdBy,
		AssignedTo:  in.AssignedTo,
	}
	if in.Priority != "" {
		p := store.Priority(in.Priority)
		if !p.Valid() {
			return nil, apperr.Validation(msgInvalidPriority)
		}
		t.Priority = p
	}
	if in.DueDate != "" {
		due, err := ParseDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}

	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return created, nil
}

// UpdateInput is a partial task update. Nil fields are left unchanged.
// An empty DueDate or CompletedAt clears that date.
type UpdateInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	StatusID         *int64
	Priority         *string
	AssignedTo       *int64
	ClearAssignee    bool
	DueDate          *string
	CompletedAt      *string
}

// Update patches a task and stamps updatedBy.
func (s *Service) Update(ctx context.Context, id, updatedBy int64, in UpdateInput) (*store.Task, error) {
	var upd store.TaskUpdate

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation(msgTitleRequired)
		}
		upd.Title = &title
	}
	switch {
	case in.ClearDescription:
		upd.ClearDescription = true
	case in.Description != nil:
		if d := nonEmpty(in.Description); d != nil {
			upd.Description = d
		} else {
			upd.ClearDescription = true
		}
	}
	upd.StatusID = in.StatusID
	if in.Priority != nil {
		p := store.Priority(*in.Priority)
		if !p.Valid() {
			return nil, apperr.Validation(msgInvalidPriority)
		}
		upd.Priority = &p
	}
	switch {
	case in.ClearAssignee:
		upd.ClearAssignee = true
	case in.AssignedTo != nil:
		upd.AssignedTo = in.AssignedTo
	}

	var err error
	if upd.DueDate, upd.ClearDueDate, err = parseOptionalDate(in.DueDate); err != nil {
		return nil, err
	}
	if upd.CompletedAt, upd.ClearCompletedAt, err = parseOptionalDate(in.CompletedAt); err != nil {
		return nil, err
	}

	if upd.Empty() {
		return nil, apperr.Validation(msgNothingToUpdate)
	}

	t, err := s.store.UpdateTask(ctx, id, upd, updatedBy)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return t, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return mapTaskError(err)
	}
	return nil
}

// ParseDate accepts a calendar date (taken as UTC midnight) or an RFC 3339
// timestamp.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateOnly, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperr.Validation(msgInvalidDate)
}

func parseOptionalDate(v *string) (*time.Time, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	if strings.TrimSpace(*v) == "" {
		return nil, true, nil
	}
	t, err := ParseDate(*v)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}

func nonEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func mapTaskError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgTaskNotFound)
	case errors.Is(err, store.ErrInvalidReference):
		return apperr.Wrap(apperr.KindValidation, msgInvalidRef, err)
	default:
		return apperr.Internal(err)
	}
}

// ABOUTME: Data types and sentinel errors for taskdesk persistence
// ABOUTME: Defines users, positions, tasks, statuses and profile change requests

package store

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrNotPending is returned when a profile change request is missing or already reviewed.
// It wraps ErrNotFound so callers can treat both the same way.
var ErrNotPending = fmt.Errorf("%w: request not found or already processed", ErrNotFound)

// ErrEmailExists is returned when a user with the same email already exists
var ErrEmailExists = errors.New("email already registered")

// ErrUsernameExists is returned when a user with the same username already exists
var ErrUsernameExists = errors.New("username already taken")

// ErrPositionExists is returned when a position with the same name already exists
var ErrPositionExists = errors.New("position already exists")

// ErrInvalidReference is returned when a write points at a row that does not exist
// (unknown position, status, role or assignee).
var ErrInvalidReference = errors.New("referenced record does not exist")

// User is an account. PasswordHash must never leave the server.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Avatar       *string
	Role         Role
	PositionID   *int64
	PositionName *string // populated by reads that join positions
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate describes a partial update. Nil fields are left unchanged.
type UserUpdate struct {
	Email         *string
	Username      *string
	PasswordHash  *string
	FirstName     *string
	LastName      *string
	Avatar        *string
	ClearAvatar   bool
	Role          *Role
	PositionID    *int64
	ClearPosition bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Username == nil && u.PasswordHash == nil &&
		u.FirstName == nil && u.LastName == nil && u.Avatar == nil && !u.ClearAvatar &&
		u.Role == nil && u.PositionID == nil && !u.ClearPosition
}

// Position is a job-grade descriptor users may reference.
type Position struct {
	ID          int64
	Name        string
	Description *string
	Level       int
}

// TaskStatus is a workflow column tasks move across.
type TaskStatus struct {
	ID          int64
	Name        string
	Color       string
	Description *string
	SortOrder   int
}

// DefaultStatusID is the seeded "todo" status.
const DefaultStatusID int64 = 1

// Priority is a task urgency level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work with status, priority and assignment.
type Task struct {
	ID          int64
	Title       string
	Description *string
	StatusID    int64
	Priority    Priority
	CreatedBy   *int64
	AssignedTo  *int64
	UpdatedBy   *int64
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by reads
	StatusName     string
	StatusColor    string
	CreatedByName  *string
	AssignedToName *string
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	StatusName string
	Priority   Priority
	AssignedTo *int64
}

// TaskUpdate describes a partial task update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	StatusID         *int64
	Priority         *Priority
	AssignedTo       *int64
	ClearAssignee    bool
	DueDate          *time.Time
	ClearDueDate     bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription &&
		u.StatusID == nil && u.Priority == nil && u.AssignedTo == nil && !u.ClearAssignee &&
		u.DueDate == nil && !u.ClearDueDate && u.CompletedAt == nil && !u.ClearCompletedAt
}

// RequestStatus is the state of a profile change request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ProfileChangeRequest is a proposed display name change awaiting review.
type ProfileChangeRequest struct {
	ID           int64
	UserID       int64
	FirstName    string
	LastName     string
	Status       RequestStatus
	CreatedAt    time.Time
	ReviewedBy   *int64
	ReviewedAt   *time.Time
	RejectReason *string

	// Populated by list reads; nil when the referenced user no longer exists
	Username         *string
	UserFirstName    *string
	UserLastName     *string
	ReviewerUsername *string
}

// ProfileRequestFilter narrows ListProfileRequests.
type ProfileRequestFilter struct {
	UserID *int64
	Status *RequestStatus
}

// ReviewParams carries a single review decision.
type ReviewParams struct {
	RequestID    int64
	ReviewerID   int64
	Outcome      RequestStatus // RequestApproved or RequestRejected
	RejectReason *string
	ReviewedAt   time.Time
}

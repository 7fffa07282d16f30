// ABOUTME: JSON shapes for API responses, built from store records
// ABOUTME: Password hashes never leave the server; timestamps are RFC 3339 in UTC

package server

import (
	"time"

	"github.com/2389/taskdesk/internal/store"
	"github.com/2389/taskdesk/internal/tasks"
)

type userDTO struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       *string   `json:"avatar"`
	RoleID       int       `json:"role_id"`
	Role         string    `json:"role"`
	PositionID   *int64    `json:"position_id"`
	PositionName *string   `json:"position_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserDTO(u *store.User) userDTO {
	return userDTO{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		RoleID:       int(u.Role),
		Role:         u.Role.String(),
		PositionID:   u.PositionID,
		PositionName: u.PositionName,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func toUserDTOs(users []*store.User) []userDTO {
	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	return out
}

// userSummary is what register and login return.
type userSummary struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Avatar    *string `json:"avatar"`
	RoleID    int     `json:"role_id"`
}

func toUserSummary(u *store.User) userSummary {
	return userSummary{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		RoleID:    int(u.Role),
	}
}

type positionDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Level       int     `json:"level"`
}

func toPositionDTO(p *store.Position) positionDTO {
	return positionDTO{ID: p.ID, Name: p.Name, Description: p.Description, Level: p.Level}
}

type statusDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

func toStatusDTO(s *store.TaskStatus) statusDTO {
	return statusDTO{ID: s.ID, Name: s.Name, Color: s.Color, Description: s.Description, SortOrder: s.SortOrder}
}

type taskDTO struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	DescriptionHTML *string    `json:"description_html,omitempty"`
	StatusID        int64      `json:"status_id"`
	StatusName      string     `json:"status_name"`
	StatusColor     string     `json:"status_color"`
	Priority        string     `json:"priority"`
	CreatedBy       *int64     `json:"created_by"`
	CreatedByName   *string    `json:"created_by_name"`
	AssignedTo      *int64     `json:"assigned_to"`
	AssignedToName  *string    `json:"assigned_to_name"`
	UpdatedBy       *int64     `json:"updated_by"`
	DueDate         *time.Time `json:"due_date"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toTaskDTO(t *store.Task) taskDTO {
	return taskDTO{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		StatusID:       t.StatusID,
		StatusName:     t.StatusName,
		StatusColor:    t.StatusColor,
		Priority:       string(t.Priority),
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.CreatedByName,
		AssignedTo:     t.AssignedTo,
		AssignedToName: t.AssignedToName,
		UpdatedBy:      t.UpdatedBy,
		DueDate:        utcPtr(t.DueDate),
		CompletedAt:    utcPtr(t.CompletedAt),
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
	}
}

func toTaskDetailDTO(d *tasks.Detail) taskDTO {
	dto := toTaskDTO(d.Task)
	if d.Description != nil {
		html := d.DescriptionHTML
		dto.DescriptionHTML = &html
	}
	return dto
}

type profileRequestDTO struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ReviewedBy       *int64     `json:"reviewed_by"`
	ReviewedAt       *time.Time `json:"reviewed_at"`
	RejectReason     *string    `json:"reject_reason"`
	Username         *string    `json:"username,omitempty"`
	UserFirstName    *string    `json:"user_first_name,omitempty"`
	UserLastName     *string    `json:"user_last_name,omitempty"`
	ReviewerUsername *string    `json:"reviewer_username,omitempty"`
}

func toProfileRequestDTO(r *store.ProfileChangeRequest) profileRequestDTO {
	return profileRequestDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       utcPtr(r.ReviewedAt),
		RejectReason:     r.RejectReason,
		Username:         r.Username,
		UserFirstName:    r.UserFirstName,
		UserLastName:     r.UserLastName,
		ReviewerUsername: r.ReviewerUsername,
	}
}

func toProfileRequestDTOs(reqs []*store.ProfileChangeRequest) []profileRequestDTO {
	out := make([]profileRequestDTO, len(reqs))
	for i, r := range reqs {
		out[i] = toProfileRequestDTO(r)
	}
	return out
}

type auditDTO struct {
	ID          string         `json:"id"`
	ActorUserID int64          `json:"actor_user_id"`
	Action      string         `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Detail      map[string]any `json:"detail,omitempty"`
}

func toAuditDTOs(entries []store.AuditEntry) []auditDTO {
	out := make([]auditDTO, len(entries))
	for i, e := range entries {
		out[i] = auditDTO{
			ID:          e.ID,
			ActorUserID: e.ActorUserID,
			Action:      string(e.Action),
			TargetType:  e.TargetType,
			TargetID:    e.TargetID,
			Timestamp:   e.Timestamp.UTC(),
			Detail:      e.Detail,
		}
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

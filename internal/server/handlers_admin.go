// ABOUTME: Handlers for admin user management, positions, the directory and the audit log
// ABOUTME: Update bodies carry the target id (user_id, position_id); deletes take ?id=

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/2389/taskdesk/internal/admin"
	"github.com/2389/taskdesk/internal/apperr"
	"github.com/2389/taskdesk/internal/store"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendList(w, toUserDTOs(users), len(users))
}

type createUserRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RoleID     int    `json:"role_id"`
	PositionID *int64 `json:"position_id"`
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.users.Create(r.Context(), admin.CreateUserInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       store.Role(req.RoleID),
		PositionID: req.PositionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toUserDTO(u), "user created")
}

type updateUserRequest struct {
	UserID     int64           `json:"user_id"`
	Email      *string         `json:"email"`
	Username   *string         `json:"username"`
	Password   *string         `json:"password"`
	FirstName  *string         `json:"first_name"`
	LastName   *string         `json:"last_name"`
	RoleID     *int            `json:"role_id"`
	PositionID Optional[int64] `json:"position_id"`
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := admin.UpdateUserInput{
		UserID:        req.UserID,
		Email:         req.Email,
		Username:      req.Username,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PositionID:    req.PositionID.Ptr(),
		ClearPosition: req.PositionID.Set && req.PositionID.Null,
	}
	if req.RoleID != nil {
		role := store.Role(*req.RoleID)
		in.Role = &role
	}

	u, err := s.users.Update(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toUserDTO(u), "user updated")
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, nil, "user deleted")
}

func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	f, err := parseAuditFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.users.Audit(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendList(w, toAuditDTOs(entries), len(entries))
}

func parseAuditFilter(r *http.Request) (store.AuditFilter, error) {
	q := r.URL.Query()
	var f store.AuditFilter

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, apperr.Validation("since must be an RFC 3339 timestamp")
		}
		f.Since = &since
	}
	if v := q.Get("actor"); v != "" {
		id, err := parseID(v, "actor")
		if err != nil {
			return f, err
		}
		f.ActorUserID = &id
	}
	if v := q.Get("action"); v != "" {
		action := store.AuditAction(v)
		f.Action = &action
	}
	if v := q.Get("target_type"); v != "" {
		f.TargetType = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return f, apperr.Validation("invalid limit")
		}
		f.Limit = limit
	}
	return f, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendList(w, toUserDTOs(users), len(users))
}

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.tasks.Statuses(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]statusDTO, len(statuses))
	for i, st := range statuses {
		out[i] = toStatusDTO(st)
	}
	sendList(w, out, len(out))
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.positions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]positionDTO, len(positions))
	for i, p := range positions {
		out[i] = toPositionDTO(p)
	}
	sendList(w, out, len(out))
}

type positionRequest struct {
	PositionID  int64   `json:"position_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Level       int     `json:"level"`
}

func (req positionRequest) input() admin.PositionInput {
	return admin.PositionInput{
		ID:          req.PositionID,
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
	}
}

func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.positions.Create(r.Context(), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toPositionDTO(p), "position created")
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.positions.Update(r.Context(), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toPositionDTO(p), "position updated")
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.positions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, nil, "position deleted")
}

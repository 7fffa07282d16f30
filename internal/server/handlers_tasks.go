// ABOUTME: Handlers for the task board
// ABOUTME: created_by and updated_by always come from the session, never the body

package server

import (
	"net/http"

	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/tasks"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.tasks.List(r.Context(), tasks.ListQuery{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssignedTo: q.Get("assigned_to"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]taskDTO, len(list))
	for i, t := range list {
		out[i] = toTaskDTO(t)
	}
	sendList(w, out, len(out))
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StatusID    int64   `json:"status_id"`
	Priority    string  `json:"priority"`
	AssignedTo  *int64  `json:"assigned_to"`
	DueDate     string  `json:"due_date"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.tasks.Create(r.Context(), authCtx.UserID, tasks.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StatusID:    req.StatusID,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusCreated, toTaskDTO(t), "task created")
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toTaskDetailDTO(d), "")
}

type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description Optional[string] `json:"description"`
	StatusID    *int64           `json:"status_id"`
	Priority    *string          `json:"priority"`
	AssignedTo  Optional[int64]  `json:"assigned_to"`
	DueDate     Optional[string] `json:"due_date"`
	CompletedAt Optional[string] `json:"completed_at"`
}

// dateField maps a JSON null onto the empty string, which clears the date.
func dateField(o Optional[string]) *string {
	if !o.Set {
		return nil
	}
	if o.Null {
		empty := ""
		return &empty
	}
	return &o.Value
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.tasks.Update(r.Context(), id, authCtx.UserID, tasks.UpdateInput{
		Title:            req.Title,
		Description:      req.Description.Ptr(),
		ClearDescription: req.Description.Set && req.Description.Null,
		StatusID:         req.StatusID,
		Priority:         req.Priority,
		AssignedTo:       req.AssignedTo.Ptr(),
		ClearAssignee:    req.AssignedTo.Set && req.AssignedTo.Null,
		DueDate:          dateField(req.DueDate),
		CompletedAt:      dateField(req.CompletedAt),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, toTaskDTO(t), "task updated")
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sendData(w, http.StatusOK, nil, "task deleted")
}

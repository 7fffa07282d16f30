// ABOUTME: End-to-end tests for profile requests, admin management and tasks
// ABOUTME: Requests go through the full middleware chain against a real SQLite store

package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/taskdesk/internal/store"
)

func TestProfileRequestApproval(t *testing.T) {
	srv := newTestServer(t, nil)
	memberID, memberToken := signUp(t, srv, "anna")
	adminID, adminToken := signUpAdmin(t, srv, "boss")

	rec := do(t, srv, http.MethodPost, "/profile-requests", map[string]string{
		"first_name": "Анна",
		"last_name":  "Смирнова",
	}, memberToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decodeData[profileRequestDTO](t, rec)
	assert.Equal(t, "pending", submitted.Status)
	assert.Equal(t, memberID, submitted.UserID)

	// Names are not applied until review.
	rec = do(t, srv, http.MethodGet, "/auth/me", nil, memberToken)
	assert.NotEqual(t, "Анна", decodeData[userDTO](t, rec).FirstName)

	rec = do(t, srv, http.MethodGet, "/profile-requests", nil, memberToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodGet, "/profile-requests?status=pending", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeData[[]profileRequestDTO](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)

	path := fmt.Sprintf("/profile-requests/%d", submitted.ID)
	rec = do(t, srv, http.MethodPut, path, map[string]string{"action": "approve"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "request approved", decodeEnvelope(t, rec).Message)
	reviewed := decodeData[profileRequestDTO](t, rec)
	assert.Equal(t, "approved", reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, adminID, *reviewed.ReviewedBy)

	rec = do(t, srv, http.MethodGet, "/auth/me", nil, memberToken)
	me := decodeData[userDTO](t, rec)
	assert.Equal(t, "Анна", me.FirstName)
	assert.Equal(t, "Смирнова", me.LastName)

	rec = do(t, srv, http.MethodPut, path, map[string]string{"action": "reject"}, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "request not found or already processed", decodeEnvelope(t, rec).Error)

	rec = do(t, srv, http.MethodGet, "/profile-requests/mine", nil, memberToken)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeEnvelope(t, rec)
	require.NotNil(t, mine.Count)
	assert.Equal(t, 1, *mine.Count)

	rec = do(t, srv, http.MethodGet, "/admin/audit?action=approve_profile_request", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeData[[]auditDTO](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, adminID, entries[0].ActorUserID)
}

func TestProfileRequestReject(t *testing.T) {
	srv := newTestServer(t, nil)
	_, memberToken := signUp(t, srv, "frank")
	_, adminToken := signUpAdmin(t, srv, "boss")

	rec := do(t, srv, http.MethodPost, "/profile-requests", map[string]string{
		"first_name": "Frankie",
		"last_name":  "Stone",
	}, memberToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData[profileRequestDTO](t, rec).ID
	path := fmt.Sprintf("/profile-requests/%d", id)

	rec = do(t, srv, http.MethodPut, path, map[string]string{"action": "maybe"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, path, map[string]string{
		"action":        "reject",
		"reject_reason": "  use your legal name  ",
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	reviewed := decodeData[profileRequestDTO](t, rec)
	assert.Equal(t, "rejected", reviewed.Status)
	require.NotNil(t, reviewed.RejectReason)
	assert.Equal(t, "use your legal name", *reviewed.RejectReason)

	rec = do(t, srv, http.MethodGet, "/auth/me", nil, memberToken)
	assert.NotEqual(t, "Frankie", decodeData[userDTO](t, rec).FirstName)

	rec = do(t, srv, http.MethodPut, "/profile-requests/abc", map[string]string{"action": "approve"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/profile-requests?status=weird", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUserManagement(t *testing.T) {
	srv := newTestServer(t, nil)
	adminID, adminToken := signUpAdmin(t, srv, "root")

	newUser := map[string]any{
		"email":      "grace@example.com",
		"username":   "grace",
		"password":   "secret123",
		"first_name": "Grace",
		"last_name":  "Lee",
		"role_id":    int(store.RoleManager),
	}
	rec := do(t, srv, http.MethodPost, "/admin/users", newUser, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeData[userDTO](t, rec)
	assert.Equal(t, "manager", created.Role)

	rec = do(t, srv, http.MethodPost, "/admin/users", newUser, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user with this email or username already exists", decodeEnvelope(t, rec).Error)

	rec = do(t, srv, http.MethodPost, "/positions", map[string]any{
		"name":  "Engineer",
		"level": 2,
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	position := decodeData[positionDTO](t, rec)

	rec = do(t, srv, http.MethodPut, "/admin/users", map[string]any{
		"user_id":     created.ID,
		"position_id": position.ID,
		"first_name":  "Gracie",
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[userDTO](t, rec)
	assert.Equal(t, "Gracie", updated.FirstName)
	require.NotNil(t, updated.PositionID)
	assert.Equal(t, position.ID, *updated.PositionID)

	rec = do(t, srv, http.MethodPut, "/admin/users", map[string]any{
		"user_id":     created.ID,
		"position_id": nil,
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[userDTO](t, rec).PositionID)

	rec = do(t, srv, http.MethodPut, "/admin/users", map[string]any{"user_id": created.ID}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no fields to update", decodeEnvelope(t, rec).Error)

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/admin/users?id=%d", adminID), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cannot delete your own account", decodeEnvelope(t, rec).Error)

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/admin/users?id=%d", created.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/admin/users?id=%d", created.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/admin/users", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeData[[]userDTO](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, adminID, users[0].ID)

	rec = do(t, srv, http.MethodGet, "/admin/audit?target_type=user", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var actions []string
	for _, e := range decodeData[[]auditDTO](t, rec) {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(store.AuditCreateUser))
	assert.Contains(t, actions, string(store.AuditUpdateUser))
	assert.Contains(t, actions, string(store.AuditDeleteUser))

	rec = do(t, srv, http.MethodGet, "/admin/audit?since=yesterday", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPositions(t *testing.T) {
	srv := newTestServer(t, nil)
	_, adminToken := signUpAdmin(t, srv, "root")
	_, memberToken := signUp(t, srv, "henry")

	rec := do(t, srv, http.MethodPost, "/positions", map[string]any{"name": "Lead", "level": 3}, memberToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodPost, "/positions", map[string]any{"name": "Lead"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/positions", map[string]any{"name": "Lead", "level": 3}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	lead := decodeData[positionDTO](t, rec)

	rec = do(t, srv, http.MethodPost, "/positions", map[string]any{"name": "Lead", "level": 4}, adminToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPut, "/positions", map[string]any{
		"position_id": lead.ID,
		"name":        "Team Lead",
		"level":       4,
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Team Lead", decodeData[positionDTO](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/positions", nil, memberToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]positionDTO](t, rec), 1)

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/positions?id=%d", lead.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/positions", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectoryAndStatuses(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := signUp(t, srv, "ivy")
	signUp(t, srv, "jack")

	rec := do(t, srv, http.MethodGet, "/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(t, srv, http.MethodGet, "/statuses", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeData[[]statusDTO](t, rec)
	require.Len(t, statuses, 4)
	assert.Equal(t, "todo", statuses[0].Name)
	assert.Equal(t, "done", statuses[3].Name)
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	authorID, token := signUp(t, srv, "kate")
	assigneeID, _ := signUp(t, srv, "liam")

	rec := do(t, srv, http.MethodPost, "/tasks", map[string]any{
		"title":       "  Ship the release  ",
		"description": "Check the **changelog** first",
		"priority":    "high",
		"assigned_to": assigneeID,
		"due_date":    "2026-03-01",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decodeData[taskDTO](t, rec)
	assert.Equal(t, "Ship the release", task.Title)
	assert.Equal(t, "todo", task.StatusName)
	require.NotNil(t, task.CreatedBy)
	assert.Equal(t, authorID, *task.CreatedBy)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-03-01", task.DueDate.Format("2006-01-02"))

	path := fmt.Sprintf("/tasks/%d", task.ID)
	rec = do(t, srv, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeData[taskDTO](t, rec)
	require.NotNil(t, detail.DescriptionHTML)
	assert.Contains(t, *detail.DescriptionHTML, "<strong>changelog</strong>")

	rec = do(t, srv, http.MethodGet, "/tasks?priority=high", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]taskDTO](t, rec), 1)

	rec = do(t, srv, http.MethodGet, "/tasks?priority=low", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]taskDTO](t, rec))

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/tasks?assigned_to=%d", assigneeID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]taskDTO](t, rec), 1)

	rec = do(t, srv, http.MethodPut, path, map[string]any{
		"status_id":   4,
		"due_date":    nil,
		"assigned_to": nil,
		"description": nil,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[taskDTO](t, rec)
	assert.Equal(t, "done", updated.StatusName)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.AssignedTo)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Ship the release", updated.Title)

	rec = do(t, srv, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "task not found", decodeEnvelope(t, rec).Error)
}

func TestTaskValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := signUp(t, srv, "mia")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing title", http.MethodPost, "/tasks", map[string]any{"title": "   "}, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/tasks", map[string]any{"title": "x", "priority": "asap"}, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/tasks", map[string]any{"title": "x", "due_date": "next week"}, http.StatusBadRequest},
		{"unknown status", http.MethodPost, "/tasks", map[string]any{"title": "x", "status_id": 99}, http.StatusBadRequest},
		{"unknown assignee", http.MethodPost, "/tasks", map[string]any{"title": "x", "assigned_to": 999}, http.StatusBadRequest},
		{"bad list filter", http.MethodGet, "/tasks?assigned_to=me", nil, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/tasks/zero", nil, http.StatusBadRequest},
		{"missing task", http.MethodPut, "/tasks/424242", map[string]any{"title": "x"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body, token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := signUp(t, srv, "nora")

	huge := `{"avatar":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := do(t, srv, http.MethodPut, "/auth/avatar", huge, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body too large", decodeEnvelope(t, rec).Error)
}

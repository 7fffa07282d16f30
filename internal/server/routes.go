// ABOUTME: Route table mapping method patterns to handlers and access levels
// ABOUTME: Public, signed-in and admin-only groups are wrapped by the auth gate

package server

import (
	"net/http"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	user := func(h http.HandlerFunc) http.Handler { return s.gate.RequireUser(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return s.gate.RequireAdmin(h) }

	// Health
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	// Authentication
	mux.Handle("POST /auth/register", s.rateLimited(s.handleRegister))
	mux.Handle("POST /auth/login", s.rateLimited(s.handleLogin))
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("GET /auth/me", user(s.handleMe))
	mux.Handle("PUT /auth/profile", user(s.handleUpdateProfile))
	mux.Handle("PUT /auth/avatar", user(s.handleUpdateAvatar))

	// Profile change requests
	mux.Handle("POST /profile-requests", user(s.handleSubmitProfileRequest))
	mux.Handle("GET /profile-requests/mine", user(s.handleListMyProfileRequests))
	mux.Handle("GET /profile-requests", adminOnly(s.handleListProfileRequests))
	mux.Handle("PUT /profile-requests/{id}", adminOnly(s.handleReviewProfileRequest))

	// Admin user management
	mux.Handle("GET /admin/users", adminOnly(s.handleAdminListUsers))
	mux.Handle("POST /admin/users", adminOnly(s.handleAdminCreateUser))
	mux.Handle("PUT /admin/users", adminOnly(s.handleAdminUpdateUser))
	mux.Handle("DELETE /admin/users", adminOnly(s.handleAdminDeleteUser))
	mux.Handle("GET /admin/audit", adminOnly(s.handleAdminAudit))

	// Directory and reference data
	mux.Handle("GET /users", user(s.handleListUsers))
	mux.Handle("GET /statuses", user(s.handleListStatuses))
	mux.Handle("GET /positions", user(s.handleListPositions))
	mux.Handle("POST /positions", adminOnly(s.handleCreatePosition))
	mux.Handle("PUT /positions", adminOnly(s.handleUpdatePosition))
	mux.Handle("DELETE /positions", adminOnly(s.handleDeletePosition))

	// Tasks
	mux.Handle("GET /tasks", user(s.handleListTasks))
	mux.Handle("POST /tasks", user(s.handleCreateTask))
	mux.Handle("GET /tasks/{id}", user(s.handleGetTask))
	mux.Handle("PUT /tasks/{id}", user(s.handleUpdateTask))
	mux.Handle("DELETE /tasks/{id}", user(s.handleDeleteTask))
}

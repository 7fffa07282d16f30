// Package admin provides administrative operations for the HTTP API.
//
// # Overview
//
// Each service wraps a narrow store interface and reads the acting admin
// from the request context (see auth.MustFromContext). Every mutation
// appends an audit entry; an audit write failure is logged and does not
// fail the operation.
//
// # Endpoints
//
// User management (admin only):
//
//   - GET /admin/users - List all users
//   - POST /admin/users - Create a user
//   - PUT /admin/users - Patch a user (user_id in body)
//   - DELETE /admin/users?id= - Delete a user (never yourself)
//   - GET /admin/audit - List audit entries
//
// Positions:
//
//   - GET /positions - List positions (any signed-in user)
//   - POST /positions - Create a position (admin)
//   - PUT /positions - Replace a position (admin, id in body)
//   - DELETE /positions?id= - Delete a position (admin)
//
// # Roles
//
//   - admin (1): full access
//   - member (2): default for new accounts
//   - manager (3): recorded but grants nothing extra
package admin

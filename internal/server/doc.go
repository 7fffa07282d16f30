// Package server exposes taskdesk over HTTP.
//
// Server owns the store and an optional tsnet node. Handler builds the
// route table and wraps it with request ids, access logging, tracing and
// panic recovery. Every JSON response uses the same envelope:
//
//	{"success": true, "data": ..., "message": "...", "count": 3}
//	{"success": false, "error": "..."}
//
// Routes:
//
//	GET    /health                 liveness
//	GET    /health/ready           database ping
//	POST   /auth/register          create a member account (rate limited)
//	POST   /auth/login             issue a session cookie (rate limited)
//	POST   /auth/logout            clear the session cookie
//	GET    /auth/me                current user
//	PUT    /auth/profile           set own names and avatar
//	PUT    /auth/avatar            set own avatar
//	POST   /profile-requests       submit a name change for review
//	GET    /profile-requests/mine  own requests
//	GET    /profile-requests       all requests, ?status= (admin)
//	PUT    /profile-requests/{id}  approve or reject (admin)
//	GET    /admin/users            list accounts (admin)
//	POST   /admin/users            create an account (admin)
//	PUT    /admin/users            update an account (admin)
//	DELETE /admin/users?id=        delete an account (admin)
//	GET    /admin/audit            audit log (admin)
//	GET    /users                  directory
//	GET    /statuses               task statuses
//	GET    /positions              positions
//	POST   /positions              create (admin)
//	PUT    /positions              update (admin)
//	DELETE /positions?id=          delete (admin)
//	GET    /tasks                  list, ?status= ?priority= ?assigned_to=
//	POST   /tasks                  create
//	GET    /tasks/{id}             detail with rendered description
//	PUT    /tasks/{id}             partial update
//	DELETE /tasks/{id}             delete
package server

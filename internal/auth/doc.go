// Package auth implements session authentication for taskdesk.
//
// # Passwords
//
// HashPassword and VerifyPassword wrap bcrypt at a fixed cost of 10.
// VerifyPassword returns false for any mismatch, including malformed hashes.
//
// # Session Tokens
//
// TokenIssuer signs HS256 JWTs carrying the user's id, email and username,
// an issued-at time and an expiry exactly SessionTTL (7 days) later. Verify
// never panics; every failure is ErrInvalidToken or ErrExpiredToken.
//
// Tokens travel in the "token" cookie (see CookieOptions). Logging out only
// clears the cookie. There is no server-side revocation, so a token stays
// usable until it expires.
//
// # Authorization Gate
//
// Gate.Require wraps handlers:
//
//	mux.Handle("GET /admin/users", gate.RequireAdmin(http.HandlerFunc(h)))
//
// For each request it verifies the token, then reads the caller's role from
// the store by the id in the token. The role is never taken from the token,
// so role changes apply on the next request. Missing, invalid or orphaned
// sessions get 401; a valid session with the wrong role gets 403.
package auth

// ABOUTME: Session cookie helpers for delivering and clearing the session token
// ABOUTME: HttpOnly, SameSite=Lax, path /, Secure over TLS, max-age matching the token

package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// CookieOptions controls cookie attributes that depend on deployment.
type CookieOptions struct {
	// ForceSecure marks cookies Secure even without r.TLS, for servers
	// behind a TLS-terminating proxy.
	ForceSecure bool
}

func (o CookieOptions) secure(r *http.Request) bool {
	return o.ForceSecure || r.TLS != nil
}

// SetSessionCookie delivers token to the client.
func (o CookieOptions) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   o.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie instructs the client to delete the session cookie.
// The token itself stays valid until it expires.
func (o CookieOptions) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

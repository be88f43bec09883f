package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie name.
const CookieName = "session"

// CookieStore reads and writes the signed token as an HTTP cookie.
// Pure boundary adapter: it never inspects the token.
type CookieStore struct {
	secure bool
}

// NewCookieStore creates a cookie store. secure marks cookies Secure,
// which production configuration enables.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{secure: secure}
}

// Persist sets the session cookie with the given token and expiry.
func (s *CookieStore) Persist(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw cookie value, or ok=false when absent.
func (s *CookieStore) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Clear removes the cookie by setting an already-expired empty value.
// Takes effect at the edge on the next request without a server round
// trip.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

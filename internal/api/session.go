package api

import (
	"net/http"
	"time"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/session"
)

// SessionIssuer mints and persists session cookies. It is shared by
// the auth and profile handlers: any mutation of a session-embedded
// field (email, display name, avatar) re-issues the cookie so the
// edge never serves stale identity.
type SessionIssuer struct {
	codec   *session.Codec
	cookies *session.CookieStore
	ttl     time.Duration
}

// NewSessionIssuer creates a SessionIssuer. A non-positive ttl falls
// back to session.DefaultTTL.
func NewSessionIssuer(codec *session.Codec, cookies *session.CookieStore, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &SessionIssuer{codec: codec, cookies: cookies, ttl: ttl}
}

// Issue signs a session for the user and sets the cookie.
func (si *SessionIssuer) Issue(w http.ResponseWriter, user *identity.User) error {
	expiresAt := time.Now().Add(si.ttl)
	token, err := si.codec.Issue(session.Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		ExpiresAt:   expiresAt,
	}, si.ttl)
	if err != nil {
		return err
	}
	si.cookies.Persist(w, token, expiresAt)
	return nil
}

// Clear removes the session cookie.
func (si *SessionIssuer) Clear(w http.ResponseWriter) {
	si.cookies.Clear(w)
}

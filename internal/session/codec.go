// Package session provides stateless signed-session issuance and
// verification, and the cookie adapter that carries the token.
//
// A session is a capability token held by the client, not a server-side
// record: nothing here touches storage, which is what lets the access
// gate run ahead of any database-backed authorization.
package session

import (
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session lifetime used when callers pass no TTL.
const DefaultTTL = 24 * time.Hour

// Session is the payload embedded in the signed token.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarURL   string
	ExpiresAt   time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Codec signs and verifies session tokens with a symmetric key.
// Both operations are pure: no I/O, no shared mutable state.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec creates a Codec signing with the given secret. An empty
// secret generates a random per-process key: tokens verify consistently
// within this process but not across restarts. Acceptable outside
// production only; the config loader rejects an empty secret there.
func NewCodec(secret string) *Codec {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("session: cannot read random key: " + err.Error())
		}
	}
	return &Codec{key: key, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs the session payload with the given TTL and returns an
// opaque token string. The session's ExpiresAt field is ignored in
// favor of now+ttl.
func (c *Codec) Issue(s Session, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       s.Email,
		DisplayName: s.DisplayName,
		AvatarURL:   s.AvatarURL,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify validates the token signature and expiry, returning the
// embedded session. A bad signature, malformed token, or expired token
// yields ok=false; callers treat that as anonymous, never as a fault.
func (c *Codec) Verify(token string) (Session, bool) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Session{}, false
	}

	return Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, true
}

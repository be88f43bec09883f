package server

import "testing"

func TestAccessGateDecisions(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		want          Action
	}{
		// Public-only pages
		{"login page anonymous", "/login", false, ActionPass},
		{"login page authenticated", "/login", true, ActionRedirectHome},
		{"signup page anonymous", "/signup", false, ActionPass},
		{"signup page authenticated", "/signup", true, ActionRedirectHome},

		// Room paths always pass; the room controller decides what to render
		{"room page anonymous", "/rooms/4f9d2c1a", false, ActionPass},
		{"room page authenticated", "/rooms/4f9d2c1a", true, ActionPass},
		{"new room page anonymous", "/rooms/new", false, ActionPass},

		// Always-public paths
		{"static asset anonymous", "/static/app.css", false, ActionPass},
		{"static asset authenticated", "/static/app.css", true, ActionPass},
		{"health anonymous", "/api/healthz", false, ActionPass},
		{"api login anonymous", "/api/auth/login", false, ActionPass},
		{"api signup anonymous", "/api/auth/signup", false, ActionPass},

		// Protected pages
		{"home anonymous", "/", false, ActionRedirectLogin},
		{"home authenticated", "/", true, ActionPass},
		{"profile anonymous", "/profile", false, ActionRedirectLogin},
		{"settings authenticated", "/settings", true, ActionPass},
		{"unknown page anonymous", "/does-not-exist", false, ActionRedirectLogin},

		// Protected API gets JSON denial, never a redirect
		{"api rooms anonymous", "/api/rooms", false, ActionDenyJSON},
		{"api rooms authenticated", "/api/rooms", true, ActionPass},
		{"api me anonymous", "/api/auth/me", false, ActionDenyJSON},
		{"api task toggle anonymous", "/api/tasks/42/toggle", false, ActionDenyJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.path, tt.authenticated); got != tt.want {
				t.Errorf("Decide(%q, %v) = %v, want %v", tt.path, tt.authenticated, got, tt.want)
			}
		})
	}
}

func TestPathMatchesPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/api", "/api", true},
		{"/api/rooms", "/api", true},
		{"/apiary", "/api", false},
		{"/static/css/app.css", "/static", true},
		{"/", "/api", false},
	}

	for _, tt := range tests {
		if got := pathMatchesPrefix(tt.path, tt.prefix); got != tt.want {
			t.Errorf("pathMatchesPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}

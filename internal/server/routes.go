package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskrooms/taskrooms/internal/api"
	"github.com/taskrooms/taskrooms/internal/web"
)

// Action is the access gate's verdict for a request.
type Action int

const (
	// ActionPass lets the request through to its handler.
	ActionPass Action = iota
	// ActionRedirectHome sends an already-authenticated visitor away
	// from a public-only page.
	ActionRedirectHome
	// ActionRedirectLogin sends an anonymous visitor to the login
	// page, preserving the requested path as redirectTo.
	ActionRedirectLogin
	// ActionDenyJSON rejects an anonymous API call with a 401 JSON body.
	ActionDenyJSON
)

// publicOnlyPages are reachable only without a session; an
// authenticated visitor is sent home instead.
var publicOnlyPages = []string{"/login", "/signup"}

// alwaysPublic paths pass the gate regardless of session state.
var alwaysPublic = []string{
	"/static",
	"/api/healthz",
	"/api/auth/signup",
	"/api/auth/login",
}

// Decide is the gate's decision table over the request path and
// session validity. This is the single source of truth for edge
// gating decisions.
//
// Room pages always pass: the room controller renders a teaser or a
// not-found page itself, so a bare invite link works for logged-out
// visitors without leaking whether the room exists.
func Decide(path string, authenticated bool) Action {
	for _, p := range publicOnlyPages {
		if path == p {
			if authenticated {
				return ActionRedirectHome
			}
			return ActionPass
		}
	}
	for _, p := range alwaysPublic {
		if pathMatchesPrefix(path, p) {
			return ActionPass
		}
	}
	if pathMatchesPrefix(path, "/rooms") {
		return ActionPass
	}
	if authenticated {
		return ActionPass
	}
	if pathMatchesPrefix(path, "/api") {
		return ActionDenyJSON
	}
	return ActionRedirectLogin
}

// pathMatchesPrefix checks if path equals or is a subpath of prefix.
func pathMatchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix)] == '/'
	}
	return false
}

// setupRoutes creates the chi router with all routes mounted.
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	// Global middleware stack (order matters for correct logging).
	// RequestID must come first so GetReqID works in loggingMiddleware.
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Rate limiting for high-risk public endpoints
	rateLimitConfig := map[string]RateLimitConfig{
		"/api/auth/login": {RequestsPerMinute: 5, Burst: 2},
	}
	r.Use(s.rateLimitMiddleware(rateLimitConfig))

	// Session decode first, then the gate's decision table
	r.Use(s.sessionMiddleware)
	r.Use(s.accessGate)

	// Server-rendered pages
	r.Get("/", s.pages.Home)
	r.Get("/login", s.pages.Login)
	r.Get("/signup", s.pages.Signup)
	r.Get("/rooms/new", s.pages.NewRoom)
	r.Get("/rooms/{roomID}", s.pages.RoomPage)
	r.Get("/profile", s.pages.Profile)
	r.Get("/settings", s.pages.Settings)
	r.Handle("/static/*", web.Static())

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", api.HealthHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.authHandler.HandleSignup)
			r.Post("/login", s.authHandler.HandleLogin)
			r.Post("/logout", s.authHandler.HandleLogout)
			r.Get("/me", s.authHandler.HandleMe)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.roomsHandler.HandleList)
			r.Post("/", s.roomsHandler.HandleCreate)
			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", s.roomsHandler.HandleGet)
				r.Post("/invite", s.roomsHandler.HandleInvite)
				r.Post("/join", s.roomsHandler.HandleJoin)
				r.Post("/leave", s.roomsHandler.HandleLeave)
				r.Get("/tasks", s.tasksHandler.HandleList)
				r.Post("/tasks", s.tasksHandler.HandleCreate)
			})
		})

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Patch("/", s.tasksHandler.HandleUpdate)
			r.Post("/toggle", s.tasksHandler.HandleToggle)
			r.Delete("/", s.tasksHandler.HandleDelete)
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Get("/", s.invitationsHandler.HandleList)
			r.Get("/unread-count", s.invitationsHandler.HandleUnreadCount)
			r.Post("/{invitationID}/accept", s.invitationsHandler.HandleAccept)
			r.Post("/{invitationID}/decline", s.invitationsHandler.HandleDecline)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/parse-task", s.aiHandler.HandleParseTask)
			r.Post("/suggest-priority", s.aiHandler.HandleSuggestPriority)
			r.Post("/summarize", s.aiHandler.HandleSummarize)
		})

		r.Put("/account", s.profileHandler.HandleUpdateAccount)
		r.Put("/profile", s.profileHandler.HandleUpdateProfile)
		r.Put("/settings/notifications", s.profileHandler.HandleNotifications)
	})

	return r
}

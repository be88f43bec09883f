// Package server provides HTTP server wiring and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskrooms/taskrooms/internal/ai"
	"github.com/taskrooms/taskrooms/internal/api"
	"github.com/taskrooms/taskrooms/internal/config"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
	"github.com/taskrooms/taskrooms/internal/web"
)

// ErrMissingDep indicates a required dependency was not provided.
var ErrMissingDep = errors.New("missing required dependency")

// Deps holds all server dependencies.
type Deps struct {
	// Required: domain services
	Directory *identity.Directory
	Registry  *rooms.Registry
	Ledger    *invitations.Ledger
	Tasks     *tasks.Service

	// Required: AI collaborator client. The client itself degrades to
	// ErrUnavailable when no backend is configured.
	AI *ai.Client

	// Required: session token codec and cookie handling
	Codec   *session.Codec
	Cookies *session.CookieStore
}

// Server wraps the HTTP server and its handlers.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	logger     *slog.Logger
	deps       *Deps

	trustedProxies *TrustedProxies
	issuer         *api.SessionIssuer

	authHandler        *api.AuthHandler
	roomsHandler       *api.RoomsHandler
	invitationsHandler *api.InvitationsHandler
	tasksHandler       *api.TasksHandler
	aiHandler          *api.AIHandler
	profileHandler     *api.ProfileHandler
	pages              *web.Handler
}

// New creates a new Server with the given configuration.
// Returns an error if required dependencies are missing.
func New(cfg *config.Config, logger *slog.Logger, deps *Deps) (*Server, error) {
	if err := validateDeps(deps); err != nil {
		return nil, err
	}
	logger = logutil.NoopIfNil(logger)

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	issuer := api.NewSessionIssuer(deps.Codec, deps.Cookies, ttl)

	pages, err := web.NewHandler(deps.Directory, deps.Registry, deps.Ledger, deps.Tasks, logger)
	if err != nil {
		return nil, fmt.Errorf("build page handler: %w", err)
	}

	s := &Server{
		cfg:            cfg,
		logger:         logger,
		deps:           deps,
		trustedProxies: NewTrustedProxies(cfg.TrustedProxies),
		issuer:         issuer,

		authHandler:        api.NewAuthHandler(deps.Directory, issuer, logger),
		roomsHandler:       api.NewRoomsHandler(deps.Registry, deps.Ledger, logger),
		invitationsHandler: api.NewInvitationsHandler(deps.Ledger, logger),
		tasksHandler:       api.NewTasksHandler(deps.Tasks, logger),
		aiHandler:          api.NewAIHandler(deps.AI, deps.Tasks, logger),
		profileHandler:     api.NewProfileHandler(deps.Directory, issuer, logger),
		pages:              pages,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully configured root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		"addr", s.cfg.ListenAddr,
		"environment", s.cfg.Environment,
	)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// validateDeps checks that all required dependencies are provided.
func validateDeps(deps *Deps) error {
	if deps == nil {
		return fmt.Errorf("%w: deps is nil", ErrMissingDep)
	}
	if deps.Directory == nil {
		return fmt.Errorf("%w: Directory", ErrMissingDep)
	}
	if deps.Registry == nil {
		return fmt.Errorf("%w: Registry", ErrMissingDep)
	}
	if deps.Ledger == nil {
		return fmt.Errorf("%w: Ledger", ErrMissingDep)
	}
	if deps.Tasks == nil {
		return fmt.Errorf("%w: Tasks", ErrMissingDep)
	}
	if deps.AI == nil {
		return fmt.Errorf("%w: AI", ErrMissingDep)
	}
	if deps.Codec == nil {
		return fmt.Errorf("%w: Codec", ErrMissingDep)
	}
	if deps.Cookies == nil {
		return fmt.Errorf("%w: Cookies", ErrMissingDep)
	}
	return nil
}

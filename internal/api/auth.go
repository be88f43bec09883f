package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/session"
)

// AuthHandler serves signup, login, logout and the current-user probe.
type AuthHandler struct {
	directory *identity.Directory
	sessions  *SessionIssuer
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(directory *identity.Directory, sessions *SessionIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		directory: directory,
		sessions:  sessions,
		logger:    logutil.NoopIfNil(logger),
	}
}

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// HandleSignup handles POST /api/auth/signup. Signup does not log the
// user in; the client follows with a login call.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	user, err := h.directory.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteFault(w, err)
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID)
	WriteJSON(w, http.StatusCreated, user)
}

// HandleLogin handles POST /api/auth/login. On success the response
// carries the sanitized redirect target the client should navigate to.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	user, err := h.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteFault(w, err)
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		h.logger.Error("failed to issue session", "error", err)
		WriteError(w, http.StatusInternalServerError, ReasonInternalError, "failed to create session")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	WriteJSON(w, http.StatusOK, struct {
		User       *identity.User `json:"user"`
		RedirectTo string         `json:"redirectTo"`
	}{user, SanitizeRedirect(req.RedirectTo)})
}

// HandleLogout handles POST /api/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /api/auth/me, returning the authenticated user
// from storage rather than the token snapshot.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	user, err := h.directory.ByID(r.Context(), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// SanitizeRedirect keeps redirect targets on this site. Anything that
// is not a same-origin absolute path collapses to "/".
func SanitizeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}

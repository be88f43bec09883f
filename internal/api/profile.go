package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/session"
)

// ProfileHandler serves account and profile mutations. Email, display
// name and avatar travel inside the session token, so any change to
// them re-issues the cookie before responding.
type ProfileHandler struct {
	directory *identity.Directory
	sessions  *SessionIssuer
	logger    *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(directory *identity.Directory, sessions *SessionIssuer, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		directory: directory,
		sessions:  sessions,
		logger:    logutil.NoopIfNil(logger),
	}
}

// HandleUpdateAccount handles PUT /api/account (email and/or password).
func (h *ProfileHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	user, err := h.directory.UpdateAccount(r.Context(), sess.UserID, identity.AccountUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteFault(w, err)
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		h.logger.Error("failed to re-issue session", "error", err)
		WriteError(w, http.StatusInternalServerError, ReasonInternalError, "failed to refresh session")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile handles PUT /api/profile (display name, avatar).
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		DisplayName *string `json:"displayName"`
		AvatarURL   *string `json:"avatarUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	user, err := h.directory.UpdateProfile(r.Context(), sess.UserID, identity.ProfileUpdate{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		WriteFault(w, err)
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		h.logger.Error("failed to re-issue session", "error", err)
		WriteError(w, http.StatusInternalServerError, ReasonInternalError, "failed to refresh session")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// HandleNotifications handles PUT /api/settings/notifications. The
// preference is not session-embedded, so no cookie re-issue.
func (h *ProfileHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	user, err := h.directory.SetEmailNotifications(r.Context(), sess.UserID, req.Enabled)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/session"
)

// InvitationsHandler serves the notification inbox.
type InvitationsHandler struct {
	ledger *invitations.Ledger
	logger *slog.Logger
}

// NewInvitationsHandler creates an InvitationsHandler.
func NewInvitationsHandler(ledger *invitations.Ledger, logger *slog.Logger) *InvitationsHandler {
	return &InvitationsHandler{ledger: ledger, logger: logutil.NoopIfNil(logger)}
}

// HandleList handles GET /api/invitations. Opening the inbox marks
// everything read, so the list is returned as it was at open time and
// the unread badge drops to zero afterwards.
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	list, err := h.ledger.ListFor(r.Context(), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	if err := h.ledger.MarkRead(r.Context(), sess.UserID); err != nil {
		h.logger.Warn("failed to mark invitations read", "user_id", sess.UserID, "error", err)
	}
	if list == nil {
		list = []*invitations.Invitation{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleUnreadCount handles GET /api/invitations/unread-count.
func (h *InvitationsHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	count, err := h.ledger.UnreadCount(r.Context(), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Count int `json:"count"`
	}{count})
}

// HandleAccept handles POST /api/invitations/{invitationID}/accept.
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	id := chi.URLParam(r, "invitationID")
	if err := h.ledger.Accept(r.Context(), id, sess.UserID); err != nil {
		WriteFault(w, err)
		return
	}
	h.logger.Info("invitation accepted", "invitation_id", id, "user_id", sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDecline handles POST /api/invitations/{invitationID}/decline.
func (h *InvitationsHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	id := chi.URLParam(r, "invitationID")
	if err := h.ledger.Decline(r.Context(), id, sess.UserID); err != nil {
		WriteFault(w, err)
		return
	}
	h.logger.Info("invitation declined", "invitation_id", id, "user_id", sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}

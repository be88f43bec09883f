package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/session"
)

// RoomsHandler serves room CRUD, invitations into rooms, and leaving.
type RoomsHandler struct {
	registry *rooms.Registry
	ledger   *invitations.Ledger
	logger   *slog.Logger
}

// NewRoomsHandler creates a RoomsHandler.
func NewRoomsHandler(registry *rooms.Registry, ledger *invitations.Ledger, logger *slog.Logger) *RoomsHandler {
	return &RoomsHandler{
		registry: registry,
		ledger:   ledger,
		logger:   logutil.NoopIfNil(logger),
	}
}

// HandleCreate handles POST /api/rooms.
func (h *RoomsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	room, err := h.registry.Create(r.Context(), req.Name, sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}

	h.logger.Info("room created", "room_id", room.ID, "owner_id", sess.UserID)
	WriteJSON(w, http.StatusCreated, room)
}

// HandleList handles GET /api/rooms.
func (h *RoomsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	list, err := h.registry.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	if list == nil {
		list = []*rooms.Room{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/rooms/{roomID}. A room the caller is not
// a member of reads as absent.
func (h *RoomsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	room, err := h.registry.GetForUser(r.Context(), chi.URLParam(r, "roomID"), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

// HandleInvite handles POST /api/rooms/{roomID}/invite, creating a
// pending invitation for the addressee.
func (h *RoomsHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	inv, err := h.ledger.Invite(r.Context(), chi.URLParam(r, "roomID"), sess.UserID, req.Email)
	if err != nil {
		WriteFault(w, err)
		return
	}

	h.logger.Info("invitation created", "invitation_id", inv.ID, "room_id", inv.RoomID)
	WriteJSON(w, http.StatusCreated, inv)
}

// HandleJoin handles POST /api/rooms/{roomID}/join, the link-join
// path: any authenticated holder of the room URL may join.
func (h *RoomsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	roomID := chi.URLParam(r, "roomID")
	if err := h.ledger.JoinViaLink(r.Context(), roomID, sess.UserID); err != nil {
		WriteFault(w, err)
		return
	}

	room, err := h.registry.GetForUser(r.Context(), roomID, sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	h.logger.Info("user joined via link", "room_id", roomID, "user_id", sess.UserID)
	WriteJSON(w, http.StatusOK, room)
}

// HandleLeave handles POST /api/rooms/{roomID}/leave. The response
// carries the member's remaining rooms so the client can navigate.
func (h *RoomsHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	roomID := chi.URLParam(r, "roomID")
	deleted, err := h.registry.RemoveMember(r.Context(), roomID, sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}

	remaining, err := h.registry.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	if remaining == nil {
		remaining = []*rooms.Room{}
	}

	h.logger.Info("user left room", "room_id", roomID, "user_id", sess.UserID, "room_deleted", deleted)
	WriteJSON(w, http.StatusOK, struct {
		RoomDeleted    bool          `json:"room_deleted"`
		RemainingRooms []*rooms.Room `json:"remaining_rooms"`
	}{deleted, remaining})
}

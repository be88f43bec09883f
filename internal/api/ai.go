package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taskrooms/taskrooms/internal/ai"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// AIHandler fronts the AI collaborator. Summarize pulls the room's
// tasks through the task service so the membership check happens here,
// not at the remote end.
type AIHandler struct {
	client *ai.Client
	tasks  *tasks.Service
	logger *slog.Logger
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(client *ai.Client, taskService *tasks.Service, logger *slog.Logger) *AIHandler {
	return &AIHandler{client: client, tasks: taskService, logger: logutil.NoopIfNil(logger)}
}

// HandleParseTask handles POST /api/ai/parse-task.
func (h *AIHandler) HandleParseTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}
	if req.Text == "" {
		WriteBadRequest(w, "text is required")
		return
	}

	parsed, err := h.client.ParseTask(r.Context(), req.Text)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, parsed)
}

// HandleSuggestPriority handles POST /api/ai/suggest-priority.
func (h *AIHandler) HandleSuggestPriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Deadline    string `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}
	if req.Description == "" {
		WriteBadRequest(w, "description is required")
		return
	}

	suggestion, err := h.client.SuggestPriority(r.Context(), req.Description, req.Deadline)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, suggestion)
}

// HandleSummarize handles POST /api/ai/summarize.
func (h *AIHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		RoomID string `json:"room_id"`
		Period string `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}
	if req.Period != "daily" && req.Period != "weekly" {
		WriteBadRequest(w, "period must be daily or weekly")
		return
	}

	taskList, err := h.tasks.ListForRoom(r.Context(), req.RoomID, sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}

	summary, err := h.client.Summarize(r.Context(), taskList, req.Period)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

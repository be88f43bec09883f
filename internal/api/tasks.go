package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// TasksHandler serves room-scoped task CRUD.
type TasksHandler struct {
	service *tasks.Service
	logger  *slog.Logger
}

// NewTasksHandler creates a TasksHandler.
func NewTasksHandler(service *tasks.Service, logger *slog.Logger) *TasksHandler {
	return &TasksHandler{service: service, logger: logutil.NoopIfNil(logger)}
}

// HandleList handles GET /api/rooms/{roomID}/tasks.
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	list, err := h.service.ListForRoom(r.Context(), chi.URLParam(r, "roomID"), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	if list == nil {
		list = []*tasks.Task{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/rooms/{roomID}/tasks.
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		DueDate     string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	task, err := h.service.Add(r.Context(), sess.UserID, tasks.NewTask{
		RoomID:      chi.URLParam(r, "roomID"),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		WriteFault(w, err)
		return
	}

	h.logger.Info("task created", "task_id", task.ID, "room_id", task.RoomID)
	WriteJSON(w, http.StatusCreated, task)
}

// HandleUpdate handles PATCH /api/tasks/{taskID}. Omitted fields are
// unchanged.
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "failed to parse request body")
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "taskID"), sess.UserID, tasks.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// HandleToggle handles POST /api/tasks/{taskID}/toggle.
func (h *TasksHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	task, err := h.service.ToggleStatus(r.Context(), chi.URLParam(r, "taskID"), sess.UserID)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// HandleDelete handles DELETE /api/tasks/{taskID}.
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, ReasonUnauthenticated, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "taskID"), sess.UserID); err != nil {
		WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

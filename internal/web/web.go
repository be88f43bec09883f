// Package web serves the server-rendered pages. The room page is the
// interesting one: it composes the edge session check with the
// authoritative membership check, and an anonymous visitor, a failed
// join, and a nonexistent room all render the same teaser shape so a
// room URL alone never reveals whether the room exists.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the UI pages.
type Handler struct {
	directory *identity.Directory
	registry  *rooms.Registry
	ledger    *invitations.Ledger
	tasks     *tasks.Service
	templates *template.Template
	logger    *slog.Logger
}

// NewHandler creates a new page handler.
func NewHandler(
	directory *identity.Directory,
	registry *rooms.Registry,
	ledger *invitations.Ledger,
	taskService *tasks.Service,
	logger *slog.Logger,
) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		directory: directory,
		registry:  registry,
		ledger:    ledger,
		tasks:     taskService,
		templates: tmpl,
		logger:    logutil.NoopIfNil(logger),
	}, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?redirectTo="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
}

// pageData is the common payload for authenticated pages.
type pageData struct {
	Session     session.Session
	Rooms       []*rooms.Room
	UnreadCount int
}

func (h *Handler) commonData(r *http.Request, sess session.Session) (pageData, error) {
	list, err := h.registry.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		return pageData{}, err
	}
	unread, err := h.ledger.UnreadCount(r.Context(), sess.UserID)
	if err != nil {
		return pageData{}, err
	}
	return pageData{Session: sess, Rooms: list, UnreadCount: unread}, nil
}

// Home serves GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}
	data, err := h.commonData(r, sess)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	h.render(w, http.StatusOK, "home.html", data)
}

// Login serves GET /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", struct {
		RedirectTo string
	}{r.URL.Query().Get("redirectTo")})
}

// Signup serves GET /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signup.html", nil)
}

// NewRoom serves GET /rooms/new. The path sits under /rooms/* so the
// access gate passes it through; anonymous visitors are redirected
// here instead.
func (h *Handler) NewRoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}
	data, err := h.commonData(r, sess)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	h.render(w, http.StatusOK, "new_room.html", data)
}

// roomView is the payload for the full member view.
type roomView struct {
	pageData
	Room    *rooms.Room
	Tasks   []*tasks.Task
	Members []*identity.User
	Inbox   []*invitations.Invitation
}

// RoomPage serves GET /rooms/{roomID}.
//
// State machine per request: no session renders the public teaser with
// no data access; an authenticated non-member gets one silent join
// attempt and a membership re-check; a member gets the full view; and
// anything else (bad id, join failed) renders the not-found page with
// the same shape as the teaser.
func (h *Handler) RoomPage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	sess, authed := session.FromContext(r.Context())
	if !authed {
		h.teaser(w, r, http.StatusOK)
		return
	}

	ctx := r.Context()
	room, err := h.registry.GetForUser(ctx, roomID, sess.UserID)
	if errors.Is(err, fault.ErrNotFound) {
		if joinErr := h.ledger.JoinViaLink(ctx, roomID, sess.UserID); joinErr != nil {
			if errors.Is(joinErr, fault.ErrUnavailable) {
				h.errorPage(w, joinErr)
				return
			}
			h.teaser(w, r, http.StatusNotFound)
			return
		}
		room, err = h.registry.GetForUser(ctx, roomID, sess.UserID)
	}
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) || errors.Is(err, fault.ErrInvalidInput) {
			h.teaser(w, r, http.StatusNotFound)
			return
		}
		h.errorPage(w, err)
		return
	}

	common, err := h.commonData(r, sess)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	taskList, err := h.tasks.ListForRoom(ctx, room.ID, sess.UserID)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	inbox, err := h.ledger.ListFor(ctx, sess.UserID)
	if err != nil {
		h.errorPage(w, err)
		return
	}

	members := make([]*identity.User, 0, len(room.MemberIDs))
	for _, id := range room.MemberIDs {
		if user, err := h.directory.ByID(ctx, id); err == nil {
			members = append(members, user)
		}
	}

	h.render(w, http.StatusOK, "room.html", roomView{
		pageData: common,
		Room:     room,
		Tasks:    taskList,
		Members:  members,
		Inbox:    inbox,
	})
}

// Profile serves GET /profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "profile.html")
}

// Settings serves GET /settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "settings.html")
}

func (h *Handler) userPage(w http.ResponseWriter, r *http.Request, tmpl string) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}
	user, err := h.directory.ByID(r.Context(), sess.UserID)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	data, err := h.commonData(r, sess)
	if err != nil {
		h.errorPage(w, err)
		return
	}
	h.render(w, http.StatusOK, tmpl, struct {
		pageData
		User *identity.User
	}{data, user})
}

// teaser renders the public room teaser. The not-found case reuses it
// with a different status so the two responses share one shape.
func (h *Handler) teaser(w http.ResponseWriter, r *http.Request, status int) {
	_, authed := session.FromContext(r.Context())
	h.render(w, status, "room_teaser.html", struct {
		Authenticated bool
		RedirectTo    string
	}{authed, r.URL.Path})
}

func (h *Handler) errorPage(w http.ResponseWriter, err error) {
	h.logger.Error("page degraded to error view", "error", err)
	h.render(w, http.StatusBadGateway, "error.html", nil)
}

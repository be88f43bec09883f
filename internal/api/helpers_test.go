package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/api"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// env wires the full handler stack over in-memory stores, with the
// same cookie-session middleware shape the server uses.
type env struct {
	directory *identity.Directory
	registry  *rooms.Registry
	ledger    *invitations.Ledger
	tasks     *tasks.Service
	codec     *session.Codec
	cookies   *session.CookieStore
	issuer    *api.SessionIssuer
	router    chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	directory := identity.NewDirectory(identity.NewMemoryUserRepo(), identity.NewUserAuth(4))
	registry := rooms.NewRegistry(rooms.NewMemoryStore(), directory)
	ledger := invitations.NewLedger(invitations.NewMemoryStore(), registry, directory)
	taskService := tasks.NewService(tasks.NewMemoryStore(), registry)

	codec := session.NewCodec("test-secret")
	cookies := session.NewCookieStore(false)
	issuer := api.NewSessionIssuer(codec, cookies, time.Hour)

	e := &env{
		directory: directory,
		registry:  registry,
		ledger:    ledger,
		tasks:     taskService,
		codec:     codec,
		cookies:   cookies,
		issuer:    issuer,
	}
	e.router = e.buildRouter()
	return e
}

func (e *env) buildRouter() chi.Router {
	auth := api.NewAuthHandler(e.directory, e.issuer, nil)
	roomsH := api.NewRoomsHandler(e.registry, e.ledger, nil)
	invH := api.NewInvitationsHandler(e.ledger, nil)
	tasksH := api.NewTasksHandler(e.tasks, nil)
	profileH := api.NewProfileHandler(e.directory, e.issuer, nil)

	r := chi.NewRouter()
	r.Use(e.withSession)
	r.Post("/api/auth/signup", auth.HandleSignup)
	r.Post("/api/auth/login", auth.HandleLogin)
	r.Post("/api/auth/logout", auth.HandleLogout)
	r.Get("/api/auth/me", auth.HandleMe)
	r.Get("/api/rooms", roomsH.HandleList)
	r.Post("/api/rooms", roomsH.HandleCreate)
	r.Get("/api/rooms/{roomID}", roomsH.HandleGet)
	r.Post("/api/rooms/{roomID}/invite", roomsH.HandleInvite)
	r.Post("/api/rooms/{roomID}/join", roomsH.HandleJoin)
	r.Post("/api/rooms/{roomID}/leave", roomsH.HandleLeave)
	r.Get("/api/rooms/{roomID}/tasks", tasksH.HandleList)
	r.Post("/api/rooms/{roomID}/tasks", tasksH.HandleCreate)
	r.Patch("/api/tasks/{taskID}", tasksH.HandleUpdate)
	r.Post("/api/tasks/{taskID}/toggle", tasksH.HandleToggle)
	r.Delete("/api/tasks/{taskID}", tasksH.HandleDelete)
	r.Get("/api/invitations", invH.HandleList)
	r.Get("/api/invitations/unread-count", invH.HandleUnreadCount)
	r.Post("/api/invitations/{invitationID}/accept", invH.HandleAccept)
	r.Post("/api/invitations/{invitationID}/decline", invH.HandleDecline)
	r.Put("/api/account", profileH.HandleUpdateAccount)
	r.Put("/api/profile", profileH.HandleUpdateProfile)
	r.Put("/api/settings/notifications", profileH.HandleNotifications)
	return r
}

func (e *env) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := e.cookies.Read(r); ok {
			if sess, ok := e.codec.Verify(token); ok {
				r = r.WithContext(session.IntoContext(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// user creates an account and returns it with a valid session cookie.
func (e *env) user(t *testing.T, email string) (*identity.User, *http.Cookie) {
	t.Helper()

	u, err := e.directory.Signup(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}

	rec := httptest.NewRecorder()
	if err := e.issuer.Issue(rec, u); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}
	return u, cookies[0]
}

// do runs a request through the router. body may be nil.
func (e *env) do(t *testing.T, method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func reasonCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[api.ErrorEnvelope](t, rec).Error.ReasonCode
}

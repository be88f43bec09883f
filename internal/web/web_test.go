package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/tasks"
	"github.com/taskrooms/taskrooms/internal/web"
)

type fixture struct {
	directory *identity.Directory
	registry  *rooms.Registry
	ledger    *invitations.Ledger
	tasks     *tasks.Service
	handler   *web.Handler
	router    chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	directory := identity.NewDirectory(identity.NewMemoryUserRepo(), identity.NewUserAuth(4))
	registry := rooms.NewRegistry(rooms.NewMemoryStore(), directory)
	ledger := invitations.NewLedger(invitations.NewMemoryStore(), registry, directory)
	taskService := tasks.NewService(tasks.NewMemoryStore(), registry)

	handler, err := web.NewHandler(directory, registry, ledger, taskService, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/", handler.Home)
	r.Get("/login", handler.Login)
	r.Get("/signup", handler.Signup)
	r.Get("/rooms/new", handler.NewRoom)
	r.Get("/rooms/{roomID}", handler.RoomPage)
	r.Get("/profile", handler.Profile)
	r.Get("/settings", handler.Settings)

	return &fixture{
		directory: directory,
		registry:  registry,
		ledger:    ledger,
		tasks:     taskService,
		handler:   handler,
		router:    r,
	}
}

func (f *fixture) user(t *testing.T, email string) *identity.User {
	t.Helper()
	u, err := f.directory.Signup(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return u
}

// get runs a page request, optionally as the given user.
func (f *fixture) get(t *testing.T, path string, as *identity.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if as != nil {
		req = req.WithContext(session.IntoContext(req.Context(), session.Session{
			UserID:      as.ID,
			Email:       as.Email,
			DisplayName: as.DisplayName,
		}))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRoomPageAnonymousSeesTeaser(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	room, err := f.registry.Create(context.Background(), "Secret", owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/rooms/"+room.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Secret") {
		t.Error("teaser leaked the room name")
	}
	if !strings.Contains(body, "/login?redirectTo=") {
		t.Error("teaser missing login link with redirect")
	}
}

func TestRoomPageMemberSeesFullView(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	room, err := f.registry.Create(context.Background(), "Planning", owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.tasks.Add(context.Background(), owner.ID, tasks.NewTask{
		RoomID: room.ID, Title: "Write agenda",
	}); err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/rooms/"+room.ID, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Planning") || !strings.Contains(body, "Write agenda") {
		t.Error("full view missing room name or task")
	}
}

func TestRoomPageVisitorJoinsViaLink(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	visitor := f.user(t, "visitor@example.com")
	room, err := f.registry.Create(context.Background(), "Open", owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/rooms/"+room.ID, visitor)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	ok, err := f.registry.IsMember(context.Background(), room.ID, visitor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("visiting the room link did not add the visitor")
	}
}

func TestRoomPageUnknownRoomMatchesTeaserShape(t *testing.T) {
	f := newFixture(t)
	visitor := f.user(t, "visitor@example.com")

	// Random well-formed id and a malformed one both read as absent.
	for _, id := range []string{"2f9d9a31-3f0f-4d5e-9f62-6f2f6c1a0000", "not-a-uuid"} {
		rec := f.get(t, "/rooms/"+id, visitor)
		if rec.Code != http.StatusNotFound {
			t.Errorf("room %q status = %d, want 404", id, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "not available") {
			t.Errorf("room %q did not render the not-found shape", id)
		}
	}
}

func TestHomeRedirectsAnonymousToLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?redirectTo=") {
		t.Errorf("location = %q", loc)
	}
}

func TestHomeListsRooms(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	if _, err := f.registry.Create(context.Background(), "Alpha", owner.ID); err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Alpha") {
		t.Error("home page missing room")
	}
}

func TestProfilePageShowsUser(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")

	rec := f.get(t, "/profile", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "owner@example.com") {
		t.Error("profile page missing user email")
	}
}

func TestStaticServesAssets(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rec := httptest.NewRecorder()
	web.Static().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

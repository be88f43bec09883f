package api_test

import (
	"net/http"
	"testing"

	"github.com/taskrooms/taskrooms/internal/api"
	"github.com/taskrooms/taskrooms/internal/rooms"
)

func TestCreateAndListRooms(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.user(t, "alice@example.com")

	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Planning"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	room := decodeBody[rooms.Room](t, rec)
	if room.Name != "Planning" || len(room.MemberIDs) != 1 {
		t.Errorf("unexpected room: %+v", room)
	}

	rec = e.do(t, http.MethodGet, "/api/rooms", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody[[]rooms.Room](t, rec)
	if len(list) != 1 || list[0].ID != room.ID {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestGetRoomHidesExistenceFromNonMembers(t *testing.T) {
	e := newEnv(t)
	_, owner := e.user(t, "owner@example.com")
	_, outsider := e.user(t, "outsider@example.com")

	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Private"}, owner)
	room := decodeBody[rooms.Room](t, rec)

	rec = e.do(t, http.MethodGet, "/api/rooms/"+room.ID, nil, outsider)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-member get status = %d", rec.Code)
	}
	if got := reasonCode(t, rec); got != api.ReasonNotFound {
		t.Errorf("reason = %q", got)
	}
}

func TestDuplicateRoomNameConflict(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.user(t, "alice@example.com")

	e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Planning"}, cookie)
	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Planning"}, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := reasonCode(t, rec); got != api.ReasonConflict {
		t.Errorf("reason = %q", got)
	}
}

func TestInviteEndpoint(t *testing.T) {
	e := newEnv(t)
	_, owner := e.user(t, "owner@example.com")
	e.user(t, "guest@example.com")

	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Shared"}, owner)
	room := decodeBody[rooms.Room](t, rec)

	rec = e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/invite",
		map[string]string{"email": "guest@example.com"}, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/invite",
		map[string]string{"email": "nobody@example.com"}, owner)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown invitee status = %d", rec.Code)
	}
}

func TestJoinViaLink(t *testing.T) {
	e := newEnv(t)
	_, owner := e.user(t, "owner@example.com")
	joiner, joinerCookie := e.user(t, "joiner@example.com")

	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Open"}, owner)
	room := decodeBody[rooms.Room](t, rec)

	rec = e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/join", nil, joinerCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d, body %s", rec.Code, rec.Body.String())
	}
	joined := decodeBody[rooms.Room](t, rec)
	if !joined.HasMember(joiner.ID) {
		t.Error("joiner missing from member set")
	}
}

func TestLeaveRoom(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.user(t, "solo@example.com")

	rec := e.do(t, http.MethodPost, "/api/rooms", map[string]string{"name": "Temporary"}, cookie)
	room := decodeBody[rooms.Room](t, rec)

	rec = e.do(t, http.MethodPost, "/api/rooms/"+room.ID+"/leave", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("leave status = %d", rec.Code)
	}
	resp := decodeBody[struct {
		RoomDeleted    bool         `json:"room_deleted"`
		RemainingRooms []rooms.Room `json:"remaining_rooms"`
	}](t, rec)
	if !resp.RoomDeleted {
		t.Error("expected room deletion for last member")
	}
	if len(resp.RemainingRooms) != 0 {
		t.Errorf("expected no remaining rooms, got %d", len(resp.RemainingRooms))
	}
}

func TestUnauthenticatedAPIRequests(t *testing.T) {
	e := newEnv(t)

	for _, target := range []struct{ method, path string }{
		{http.MethodGet, "/api/rooms"},
		{http.MethodPost, "/api/rooms"},
		{http.MethodGet, "/api/invitations"},
	} {
		rec := e.do(t, target.method, target.path, map[string]string{}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", target.method, target.path, rec.Code)
		}
	}
}

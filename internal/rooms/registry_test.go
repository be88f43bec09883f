package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
)

func newTestRegistry(t *testing.T) (*Registry, *identity.Directory) {
	t.Helper()
	dir := identity.NewDirectory(identity.NewMemoryUserRepo(), identity.NewUserAuth(4))
	return NewRegistry(NewMemoryStore(), dir), dir
}

func signup(t *testing.T, dir *identity.Directory, email string) *identity.User {
	t.Helper()
	user, err := dir.Signup(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return user
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	owner := signup(t, dir, "owner@example.com")

	room, err := reg.Create(ctx, "Acme", owner.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if room.Name != "Acme" {
		t.Errorf("name = %q, want Acme", room.Name)
	}
	if len(room.MemberIDs) != 1 || room.MemberIDs[0] != owner.ID {
		t.Errorf("members = %v, want exactly the owner", room.MemberIDs)
	}

	list, err := reg.ListForUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListForUser() error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Acme" {
		t.Errorf("ListForUser() = %v, want one room named Acme", list)
	}
}

func TestCreateRoomDuplicateNamePerOwner(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	alice := signup(t, dir, "alice@example.com")
	bob := signup(t, dir, "bob@example.com")

	if _, err := reg.Create(ctx, "Team", alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := reg.Create(ctx, "Team", alice.ID); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate Create() error = %v, want ErrDuplicateName", err)
	}

	// Name uniqueness is per-owner, not global.
	if _, err := reg.Create(ctx, "Team", bob.ID); err != nil {
		t.Errorf("Create() same name for another owner error = %v, want nil", err)
	}
}

func TestCreateRoomEmptyName(t *testing.T) {
	reg, dir := newTestRegistry(t)
	owner := signup(t, dir, "owner@example.com")
	if _, err := reg.Create(context.Background(), "  ", owner.ID); !errors.Is(err, fault.ErrInvalidInput) {
		t.Errorf("Create() error = %v, want fault.ErrInvalidInput", err)
	}
}

func TestGetForUserHidesExistence(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	owner := signup(t, dir, "owner@example.com")
	outsider := signup(t, dir, "outsider@example.com")

	room, err := reg.Create(ctx, "Secret", owner.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// A real room the user is not in, a random nonexistent id, and a
	// malformed id must all be indistinguishable.
	for _, id := range []string{room.ID, uuid.New().String(), "not-a-uuid"} {
		if _, err := reg.GetForUser(ctx, id, outsider.ID); !errors.Is(err, fault.ErrNotFound) {
			t.Errorf("GetForUser(%q) error = %v, want fault.ErrNotFound", id, err)
		}
	}

	if _, err := reg.GetForUser(ctx, room.ID, owner.ID); err != nil {
		t.Errorf("GetForUser() for member error = %v, want nil", err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	owner := signup(t, dir, "owner@example.com")
	guest := signup(t, dir, "guest@example.com")

	room, err := reg.Create(ctx, "Acme", owner.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := reg.AddMember(ctx, room.ID, guest.ID); err != nil {
		t.Fatalf("AddMember() error: %v", err)
	}
	if err := reg.AddMember(ctx, room.ID, guest.ID); err != nil {
		t.Fatalf("second AddMember() error: %v", err)
	}

	got, err := reg.GetForUser(ctx, room.ID, guest.ID)
	if err != nil {
		t.Fatalf("GetForUser() error: %v", err)
	}
	if len(got.MemberIDs) != 2 {
		t.Errorf("members = %v, want 2 entries after duplicate add", got.MemberIDs)
	}
}

func TestAddMemberByEmail(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	owner := signup(t, dir, "owner@example.com")
	guest := signup(t, dir, "guest@example.com")
	outsider := signup(t, dir, "outsider@example.com")

	room, err := reg.Create(ctx, "Acme", owner.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		if _, err := reg.AddMemberByEmail(ctx, room.ID, owner.ID, "ghost@example.com"); !errors.Is(err, fault.ErrNotFound) {
			t.Errorf("error = %v, want fault.ErrNotFound", err)
		}
	})

	t.Run("non-member inviter", func(t *testing.T) {
		if _, err := reg.AddMemberByEmail(ctx, room.ID, outsider.ID, "guest@example.com"); !errors.Is(err, fault.ErrForbidden) {
			t.Errorf("error = %v, want fault.ErrForbidden", err)
		}
	})

	t.Run("member invites", func(t *testing.T) {
		added, err := reg.AddMemberByEmail(ctx, room.ID, owner.ID, "guest@example.com")
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if added.ID != guest.ID {
			t.Errorf("added = %q, want %q", added.ID, guest.ID)
		}
		if ok, _ := reg.IsMember(ctx, room.ID, guest.ID); !ok {
			t.Error("guest should be a member")
		}
	})

	t.Run("already member is noop success", func(t *testing.T) {
		if _, err := reg.AddMemberByEmail(ctx, room.ID, owner.ID, "guest@example.com"); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})
}

func TestRemoveMemberDeletesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	a := signup(t, dir, "a@example.com")
	b := signup(t, dir, "b@example.com")

	room, err := reg.Create(ctx, "Acme", a.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := reg.AddMember(ctx, room.ID, b.ID); err != nil {
		t.Fatalf("AddMember() error: %v", err)
	}

	// A leaves: room persists with only B.
	deleted, err := reg.RemoveMember(ctx, room.ID, a.ID)
	if err != nil {
		t.Fatalf("RemoveMember() error: %v", err)
	}
	if deleted {
		t.Error("room should survive while B remains")
	}
	got, err := reg.GetForUser(ctx, room.ID, b.ID)
	if err != nil {
		t.Fatalf("GetForUser() error: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != b.ID {
		t.Errorf("members = %v, want {B}", got.MemberIDs)
	}

	// B leaves: room is gone.
	deleted, err = reg.RemoveMember(ctx, room.ID, b.ID)
	if err != nil {
		t.Fatalf("RemoveMember() error: %v", err)
	}
	if !deleted {
		t.Error("removing the last member should delete the room")
	}
	if _, err := reg.GetForUser(ctx, room.ID, b.ID); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("GetForUser() after delete error = %v, want fault.ErrNotFound", err)
	}
	list, _ := reg.ListForUser(ctx, b.ID)
	if len(list) != 0 {
		t.Errorf("ListForUser() = %v, want empty", list)
	}
}

func TestConcurrentLastMemberLeave(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(t)
	a := signup(t, dir, "a@example.com")
	b := signup(t, dir, "b@example.com")

	room, err := reg.Create(ctx, "Acme", a.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := reg.AddMember(ctx, room.ID, b.ID); err != nil {
		t.Fatalf("AddMember() error: %v", err)
	}

	// Both members leave concurrently. Exactly one of them must be the
	// one whose departure deletes the room; no zero-member room may
	// remain observable.
	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i, uid := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			deleted, err := reg.RemoveMember(ctx, room.ID, uid)
			if err != nil && !errors.Is(err, fault.ErrNotFound) {
				t.Errorf("RemoveMember(%s) error: %v", uid, err)
			}
			results[i] = deleted
		}(i, uid)
	}
	wg.Wait()

	if results[0] && results[1] {
		t.Error("both leaves reported deleting the room")
	}
	for _, uid := range []string{a.ID, b.ID} {
		if _, err := reg.GetForUser(ctx, room.ID, uid); !errors.Is(err, fault.ErrNotFound) {
			t.Errorf("room still visible to %s after both left: %v", uid, err)
		}
	}
}

func TestRemoveMemberInvalidID(t *testing.T) {
	reg, dir := newTestRegistry(t)
	user := signup(t, dir, "a@example.com")
	if _, err := reg.RemoveMember(context.Background(), "nope", user.ID); !errors.Is(err, fault.ErrInvalidInput) {
		t.Errorf("RemoveMember() error = %v, want fault.ErrInvalidInput", err)
	}
}

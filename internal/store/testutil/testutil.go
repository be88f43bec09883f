// Package testutil provides the shared conformance suite for store
// driver tests. Every driver must pass the same suite; atomicity of
// membership mutations is part of the contract, not an implementation
// detail.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/store"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// TestUser creates a test user with a unique id and email.
func TestUser(email string) *identity.User {
	return &identity.User{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       "$2a$10$fakehashfakehashfakehash",
		DisplayName:        "Test User",
		EmailNotifications: true,
		CreatedAt:          time.Now().UTC(),
	}
}

// TestRoom creates a test room with the given members.
func TestRoom(name string, memberIDs ...string) *rooms.Room {
	return &rooms.Room{
		ID:        uuid.NewString(),
		Name:      name,
		MemberIDs: memberIDs,
		CreatedAt: time.Now().UTC(),
	}
}

// RunDriverTests runs the standard test suite against a driver.
func RunDriverTests(t *testing.T, driverName string, cfg *store.DriverConfig) {
	ctx := context.Background()

	driver, err := store.New(cfg)
	if err != nil {
		t.Fatalf("failed to create %s driver: %v", driverName, err)
	}
	defer driver.Close()

	if err := driver.Init(ctx); err != nil {
		t.Fatalf("failed to init %s driver: %v", driverName, err)
	}

	if driver.Name() != driverName {
		t.Errorf("expected driver name %q, got %q", driverName, driver.Name())
	}

	t.Run("Users", func(t *testing.T) { testUsers(t, ctx, driver.Users()) })
	t.Run("Rooms", func(t *testing.T) { testRooms(t, ctx, driver.Rooms()) })
	t.Run("RoomDeletedWithLastMember", func(t *testing.T) { testLastMemberLeave(t, ctx, driver.Rooms()) })
	t.Run("ConcurrentLastMemberLeave", func(t *testing.T) { testConcurrentLeave(t, ctx, driver.Rooms()) })
	t.Run("Invitations", func(t *testing.T) { testInvitations(t, ctx, driver.Invitations()) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, ctx, driver.Tasks()) })
}

func testUsers(t *testing.T, ctx context.Context, repo identity.UserRepo) {
	user := TestUser("alice@example.com")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("expected email %q, got %q", user.Email, got.Email)
	}

	got, err = repo.ByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("ByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected id %q, got %q", user.ID, got.ID)
	}

	dup := TestUser(user.Email)
	if err := repo.Create(ctx, dup); !errors.Is(err, identity.ErrUserExists) {
		t.Errorf("duplicate email: expected ErrUserExists, got %v", err)
	}

	got.DisplayName = "Alice"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = repo.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("ByID after update failed: %v", err)
	}
	if got.DisplayName != "Alice" {
		t.Errorf("expected display name %q, got %q", "Alice", got.DisplayName)
	}

	if _, err := repo.ByID(ctx, uuid.NewString()); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("unknown id: expected ErrUserNotFound, got %v", err)
	}

	other := TestUser("bob@example.com")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other.Email = user.Email
	if err := repo.Update(ctx, other); !errors.Is(err, identity.ErrUserExists) {
		t.Errorf("email collision on update: expected ErrUserExists, got %v", err)
	}
}

func testRooms(t *testing.T, ctx context.Context, s rooms.Store) {
	owner := uuid.NewString()
	outsider := uuid.NewString()

	room := TestRoom("Planning", owner)
	if err := s.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.GetForUser(ctx, room.ID, owner)
	if err != nil {
		t.Fatalf("GetForUser failed: %v", err)
	}
	if !got.HasMember(owner) {
		t.Error("owner missing from member set")
	}

	// Non-members see the room as absent.
	if _, err := s.GetForUser(ctx, room.ID, outsider); !errors.Is(err, rooms.ErrRoomNotFound) {
		t.Errorf("non-member: expected ErrRoomNotFound, got %v", err)
	}

	// AddMember is idempotent.
	for i := 0; i < 2; i++ {
		if err := s.AddMember(ctx, room.ID, outsider); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	got, err = s.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.MemberIDs) != 2 {
		t.Errorf("expected 2 members, got %d", len(got.MemberIDs))
	}

	if err := s.AddMember(ctx, uuid.NewString(), owner); !errors.Is(err, rooms.ErrRoomNotFound) {
		t.Errorf("absent room: expected ErrRoomNotFound, got %v", err)
	}

	// ListForUser is ordered by name.
	second := TestRoom("Alpha", owner)
	if err := s.Create(ctx, second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	list, err := s.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Planning" {
		t.Errorf("unexpected list order: %v", roomNames(list))
	}

	// Removing a non-member is a no-op.
	deleted, err := s.RemoveMember(ctx, room.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if deleted {
		t.Error("removing a non-member deleted the room")
	}

	deleted, err = s.RemoveMember(ctx, room.ID, outsider)
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if deleted {
		t.Error("room deleted while a member remained")
	}
}

func testLastMemberLeave(t *testing.T, ctx context.Context, s rooms.Store) {
	owner := uuid.NewString()
	room := TestRoom("Ephemeral", owner)
	if err := s.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := s.RemoveMember(ctx, room.ID, owner)
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if !deleted {
		t.Error("expected room deletion when last member leaves")
	}
	if _, err := s.Get(ctx, room.ID); !errors.Is(err, rooms.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound after deletion, got %v", err)
	}
}

func testConcurrentLeave(t *testing.T, ctx context.Context, s rooms.Store) {
	a, b := uuid.NewString(), uuid.NewString()
	room := TestRoom("Race", a, b)
	if err := s.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i, userID := range []string{a, b} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			deleted, err := s.RemoveMember(ctx, room.ID, userID)
			if err != nil {
				t.Errorf("RemoveMember(%s) failed: %v", userID, err)
				return
			}
			results[i] = deleted
		}(i, userID)
	}
	wg.Wait()

	if results[0] && results[1] {
		t.Error("both leaves reported deletion")
	}
	if !results[0] && !results[1] {
		t.Error("neither leave reported deletion")
	}
	if _, err := s.Get(ctx, room.ID); !errors.Is(err, rooms.ErrRoomNotFound) {
		t.Errorf("expected room gone after both members left, got %v", err)
	}
}

func testInvitations(t *testing.T, ctx context.Context, s invitations.Store) {
	userID := uuid.NewString()
	base := time.Now().UTC()

	var ids []string
	for i := 0; i < 3; i++ {
		inv := &invitations.Invitation{
			ID:          uuid.NewString(),
			UserID:      userID,
			Kind:        invitations.KindRoomInvite,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
			RoomID:      uuid.NewString(),
			RoomName:    fmt.Sprintf("Room %d", i),
			InviterID:   uuid.NewString(),
			InviterName: "Inviter",
		}
		if err := s.Create(ctx, inv); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, inv.ID)
	}

	list, err := s.ListForUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 invitations, got %d", len(list))
	}
	if list[0].RoomName != "Room 2" {
		t.Errorf("expected newest first, got %q", list[0].RoomName)
	}

	if err := s.MarkAllRead(ctx, userID); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	list, err = s.ListForUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	for _, inv := range list {
		if !inv.Read {
			t.Errorf("invitation %s still unread after MarkAllRead", inv.ID)
		}
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Conditional delete: the second delete of the same row reports absence.
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, invitations.ErrInvitationNotFound) {
		t.Errorf("second delete: expected ErrInvitationNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, ids[0]); !errors.Is(err, invitations.ErrInvitationNotFound) {
		t.Errorf("Get after delete: expected ErrInvitationNotFound, got %v", err)
	}
}

func testTasks(t *testing.T, ctx context.Context, s tasks.Store) {
	roomID := uuid.NewString()
	base := time.Now().UTC()

	var ids []string
	for i := 0; i < 2; i++ {
		task := &tasks.Task{
			ID:        uuid.NewString(),
			RoomID:    roomID,
			Title:     fmt.Sprintf("Task %d", i),
			Priority:  tasks.PriorityMedium,
			Status:    tasks.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Create(ctx, task); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, task.ID)
	}

	list, err := s.ListForRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("ListForRoom failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Task 1" {
		t.Errorf("expected newest first, got %v", taskTitles(list))
	}

	task, err := s.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	task.Status = tasks.StatusDone
	if err := s.Update(ctx, task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	task, err = s.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if task.Status != tasks.StatusDone {
		t.Errorf("expected status %q, got %q", tasks.StatusDone, task.Status)
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Errorf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}

func roomNames(list []*rooms.Room) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Name
	}
	return out
}

func taskTitles(list []*tasks.Task) []string {
	out := make([]string, len(list))
	for i, task := range list {
		out[i] = task.Title
	}
	return out
}

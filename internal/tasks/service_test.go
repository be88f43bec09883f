package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/rooms"
)

type fixture struct {
	svc      *Service
	registry *rooms.Registry
	dir      *identity.Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := identity.NewDirectory(identity.NewMemoryUserRepo(), identity.NewUserAuth(4))
	registry := rooms.NewRegistry(rooms.NewMemoryStore(), dir)
	return &fixture{
		svc:      NewService(NewMemoryStore(), registry),
		registry: registry,
		dir:      dir,
	}
}

func (f *fixture) member(t *testing.T, email string) (*identity.User, *rooms.Room) {
	t.Helper()
	ctx := context.Background()
	user, err := f.dir.Signup(ctx, email, "password123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	room, err := f.registry.Create(ctx, "Acme", user.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return user, room
}

func TestAddAndListTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, room := f.member(t, "alice@example.com")

	task, err := f.svc.Add(ctx, user.ID, NewTask{RoomID: room.ID, Title: "Ship it", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if task.Status != StatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}

	list, err := f.svc.ListForRoom(ctx, room.ID, user.ID)
	if err != nil {
		t.Fatalf("ListForRoom() error: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Ship it" {
		t.Errorf("list = %v, want one task titled 'Ship it'", list)
	}
}

func TestAddDefaultsPriority(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, room := f.member(t, "alice@example.com")

	task, err := f.svc.Add(ctx, user.ID, NewTask{RoomID: room.ID, Title: "Untriaged"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("priority = %q, want Medium default", task.Priority)
	}
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, room := f.member(t, "alice@example.com")

	tests := []struct {
		name string
		nt   NewTask
	}{
		{"empty title", NewTask{RoomID: room.ID, Title: "  "}},
		{"bad priority", NewTask{RoomID: room.ID, Title: "x", Priority: "Urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Add(ctx, user.ID, tt.nt); !errors.Is(err, fault.ErrInvalidInput) {
				t.Errorf("Add() error = %v, want fault.ErrInvalidInput", err)
			}
		})
	}
}

func TestNonMemberSeesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, room := f.member(t, "alice@example.com")
	outsider, err := f.dir.Signup(ctx, "outsider@example.com", "password123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	task, err := f.svc.Add(ctx, alice.ID, NewTask{RoomID: room.ID, Title: "Private"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, err := f.svc.ListForRoom(ctx, room.ID, outsider.ID); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("ListForRoom() for outsider error = %v, want fault.ErrNotFound", err)
	}
	if _, err := f.svc.Add(ctx, outsider.ID, NewTask{RoomID: room.ID, Title: "Sneaky"}); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Add() for outsider error = %v, want fault.ErrNotFound", err)
	}
	if err := f.svc.Delete(ctx, task.ID, outsider.ID); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Delete() for outsider error = %v, want fault.ErrNotFound", err)
	}
}

func TestUpdateAndToggle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, room := f.member(t, "alice@example.com")

	task, err := f.svc.Add(ctx, user.ID, NewTask{RoomID: room.ID, Title: "Draft"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	title := "Final"
	priority := PriorityLow
	updated, err := f.svc.Update(ctx, task.ID, user.ID, TaskUpdate{Title: &title, Priority: &priority})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Title != "Final" || updated.Priority != PriorityLow {
		t.Errorf("updated = (%q, %q), want (Final, Low)", updated.Title, updated.Priority)
	}

	toggled, err := f.svc.ToggleStatus(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() error: %v", err)
	}
	if toggled.Status != StatusDone {
		t.Errorf("status = %q, want done", toggled.Status)
	}
	toggled, err = f.svc.ToggleStatus(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() error: %v", err)
	}
	if toggled.Status != StatusPending {
		t.Errorf("status = %q, want pending after second toggle", toggled.Status)
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, room := f.member(t, "alice@example.com")

	task, err := f.svc.Add(ctx, user.ID, NewTask{RoomID: room.ID, Title: "Gone soon"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := f.svc.Delete(ctx, task.ID, user.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := f.svc.Delete(ctx, task.ID, user.ID); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want fault.ErrNotFound", err)
	}
	list, _ := f.svc.ListForRoom(ctx, room.ID, user.ID)
	if len(list) != 0 {
		t.Errorf("list after delete = %v, want empty", list)
	}
}

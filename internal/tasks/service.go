package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/rooms"
)

// Service applies membership authorization to task operations.
type Service struct {
	store    Store
	registry *rooms.Registry
}

// NewService creates a Service.
func NewService(store Store, registry *rooms.Registry) *Service {
	return &Service{store: store, registry: registry}
}

// NewTask is the create payload.
type NewTask struct {
	RoomID      string
	Title       string
	Description string
	Priority    string
	DueDate     string
}

// TaskUpdate describes a task mutation. Nil fields are unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *string
}

// ListForRoom returns the room's tasks for a member, newest first. The
// registry lookup doubles as the authorization check.
func (s *Service) ListForRoom(ctx context.Context, roomID, userID string) ([]*Task, error) {
	if _, err := s.registry.GetForUser(ctx, roomID, userID); err != nil {
		return nil, err
	}
	list, err := s.store.ListForRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", fault.ErrUnavailable, err)
	}
	return list, nil
}

// Add creates a task in a room the user is a member of. Status starts
// pending; an unset priority defaults to Medium.
func (s *Service) Add(ctx context.Context, userID string, nt NewTask) (*Task, error) {
	if _, err := s.registry.GetForUser(ctx, nt.RoomID, userID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(nt.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", fault.ErrInvalidInput)
	}
	priority := nt.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := validPriority(priority); err != nil {
		return nil, err
	}

	task := &Task{
		ID:          uuid.New().String(),
		RoomID:      nt.RoomID,
		Title:       title,
		Description: nt.Description,
		Priority:    priority,
		Status:      StatusPending,
		DueDate:     nt.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("%w: create task: %v", fault.ErrUnavailable, err)
	}
	return task, nil
}

// Update mutates a task the user may see.
func (s *Service) Update(ctx context.Context, taskID, userID string, upd TaskUpdate) (*Task, error) {
	task, err := s.authorizedTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: task title is required", fault.ErrInvalidInput)
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		if err := validPriority(*upd.Priority); err != nil {
			return nil, err
		}
		task.Priority = *upd.Priority
	}
	if upd.Status != nil {
		if *upd.Status != StatusPending && *upd.Status != StatusDone {
			return nil, fmt.Errorf("%w: invalid status %q", fault.ErrInvalidInput, *upd.Status)
		}
		task.Status = *upd.Status
	}
	if upd.DueDate != nil {
		task.DueDate = *upd.DueDate
	}

	if err := s.store.Update(ctx, task); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: update task: %v", fault.ErrUnavailable, err)
	}
	return task, nil
}

// ToggleStatus flips a task between pending and done.
func (s *Service) ToggleStatus(ctx context.Context, taskID, userID string) (*Task, error) {
	task, err := s.authorizedTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if task.Status == StatusPending {
		task.Status = StatusDone
	} else {
		task.Status = StatusPending
	}

	if err := s.store.Update(ctx, task); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: update task: %v", fault.ErrUnavailable, err)
	}
	return task, nil
}

// Delete removes a task the user may see.
func (s *Service) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.authorizedTask(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return fault.ErrNotFound
		}
		return fmt.Errorf("%w: delete task: %v", fault.ErrUnavailable, err)
	}
	return nil
}

// authorizedTask loads the task and checks the user is a member of its
// room. A task in a room the user is not in reads as absent.
func (s *Service) authorizedTask(ctx context.Context, taskID, userID string) (*Task, error) {
	if uuid.Validate(taskID) != nil {
		return nil, fmt.Errorf("%w: invalid task id", fault.ErrInvalidInput)
	}
	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get task: %v", fault.ErrUnavailable, err)
	}
	if _, err := s.registry.GetForUser(ctx, task.RoomID, userID); err != nil {
		return nil, fault.ErrNotFound
	}
	return task, nil
}

func validPriority(p string) error {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return fmt.Errorf("%w: invalid priority %q", fault.ErrInvalidInput, p)
	}
}

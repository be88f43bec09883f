// Package tasks provides room-scoped task CRUD. Authorization is
// membership, checked through the room registry; tasks carry no access
// rules of their own.
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

// Priority levels, as entered or suggested by the AI collaborator.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Task statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Task is a single item in a room's shared list.
type Task struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueDate     string    `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
}

// Store provides task persistence.
type Store interface {
	Create(ctx context.Context, task *Task) error

	// Get retrieves a task by id. Returns ErrTaskNotFound if absent.
	Get(ctx context.Context, id string) (*Task, error)

	// ListForRoom returns the room's tasks, newest first.
	ListForRoom(ctx context.Context, roomID string) ([]*Task, error)

	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryStore creates a new in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*Task)}
}

func (s *MemoryStore) Create(ctx context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *task
	s.tasks[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (s *MemoryStore) ListForRoom(ctx context.Context, roomID string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Task
	for _, task := range s.tasks {
		if task.RoomID == roomID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	cp := *task
	s.tasks[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

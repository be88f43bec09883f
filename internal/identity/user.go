// Package identity provides user records, credential verification, and
// profile mutation.
package identity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User is a persistent identity. Users are never deleted.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"` // unique, lowercase
	PasswordHash       string    `json:"-"`     // bcrypt hash, never serialized
	DisplayName        string    `json:"display_name,omitempty"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	EmailNotifications bool      `json:"email_notifications"`
	CreatedAt          time.Time `json:"created_at"`
}

// UserRepo provides user storage operations.
type UserRepo interface {
	// Create creates a new user. Returns ErrUserExists if the email is taken.
	Create(ctx context.Context, user *User) error

	// ByID retrieves a user by id. Returns ErrUserNotFound if not found.
	ByID(ctx context.Context, id string) (*User, error)

	// ByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	ByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user. Returns ErrUserNotFound if absent
	// and ErrUserExists if the new email collides with another user.
	Update(ctx context.Context, user *User) error
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryUserRepo is an in-memory implementation of UserRepo.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*User  // by id
	byEmail map[string]string // email -> id
}

// NewMemoryUserRepo creates a new in-memory user repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrUserExists
	}

	cp := *user
	r.users[cp.ID] = &cp
	r.byEmail[cp.Email] = cp.ID
	return nil
}

func (r *MemoryUserRepo) ByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *MemoryUserRepo) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	if user.Email != current.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return ErrUserExists
		}
		delete(r.byEmail, current.Email)
		r.byEmail[user.Email] = user.ID
	}

	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

// All returns every user ordered by email. Test helper.
func (r *MemoryUserRepo) All() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

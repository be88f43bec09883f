// Package invitations owns pending room invitations.
//
// An invitation is the sole notification kind today; the Kind tag keeps
// room for future kinds without an untyped payload bag. Invitations
// snapshot the room name and inviter name at invite time: they are
// point-in-time facts and are never re-resolved.
//
// The ledger never mutates membership itself; it delegates to the room
// registry so exactly one component owns the member set.
package invitations

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrInvitationNotFound = errors.New("invitation not found")

// Kind tags a notification variant.
type Kind string

// KindRoomInvite is the only notification kind currently defined.
const KindRoomInvite Kind = "room_invite"

// Invitation is a pending, targeted offer of room membership.
type Invitation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"` // recipient
	Kind        Kind      `json:"kind"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	RoomID      string    `json:"room_id"`
	RoomName    string    `json:"room_name"`    // snapshot at invite time
	InviterID   string    `json:"inviter_id"`
	InviterName string    `json:"inviter_name"` // snapshot at invite time
}

// Store provides invitation persistence. Delete must be conditional:
// deleting an absent row reports ErrInvitationNotFound, which is what
// makes concurrent double-accepts resolve to exactly one winner.
type Store interface {
	Create(ctx context.Context, inv *Invitation) error

	// Get retrieves an invitation by id. Returns ErrInvitationNotFound
	// if absent.
	Get(ctx context.Context, id string) (*Invitation, error)

	// ListForUser returns the user's invitations, newest first.
	ListForUser(ctx context.Context, userID string) ([]*Invitation, error)

	// MarkAllRead flips read=true on all unread invitations for the user.
	MarkAllRead(ctx context.Context, userID string) error

	// Delete removes the invitation, reporting ErrInvitationNotFound
	// when it was already gone.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu   sync.RWMutex
	invs map[string]*Invitation
}

// NewMemoryStore creates a new in-memory invitation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{invs: make(map[string]*Invitation)}
}

func (s *MemoryStore) Create(ctx context.Context, inv *Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *inv
	s.invs[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invs[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Invitation
	for _, inv := range s.invs {
		if inv.UserID == userID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invs {
		if inv.UserID == userID {
			inv.Read = true
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invs[id]; !ok {
		return ErrInvitationNotFound
	}
	delete(s.invs, id)
	return nil
}

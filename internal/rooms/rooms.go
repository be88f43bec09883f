// Package rooms owns room documents and their membership set.
//
// Membership is the authorization fact for everything room-scoped: a
// room fetched through GetForUser is proof the user may read and write
// its tasks. A room that exists but excludes the caller is externally
// indistinguishable from a room that does not exist.
package rooms

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrDuplicateName = errors.New("duplicate room name")
)

// Room is a persistent collaboration unit. MemberIDs is never empty
// while the room exists: the store deletes the room in the same atomic
// step that removes its last member.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID is in the member set.
func (r *Room) HasMember(userID string) bool {
	for _, id := range r.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Store provides room persistence. Implementations must make AddMember
// and RemoveMember atomic: concurrent leaves of the last two members
// must leave either a one-member room or no room, never an empty one.
type Store interface {
	// Create persists a new room.
	Create(ctx context.Context, room *Room) error

	// GetForUser returns the room only when userID is a member.
	// Absence and non-membership both yield ErrRoomNotFound.
	GetForUser(ctx context.Context, roomID, userID string) (*Room, error)

	// Get returns the room regardless of membership. Internal use by
	// the registry's permission checks; never exposed to callers.
	Get(ctx context.Context, roomID string) (*Room, error)

	// ListForUser returns rooms where userID is a member, ordered by name.
	ListForUser(ctx context.Context, userID string) ([]*Room, error)

	// AddMember adds userID to the room's member set. Adding an
	// existing member is a no-op success. Returns ErrRoomNotFound if
	// the room is absent.
	AddMember(ctx context.Context, roomID, userID string) error

	// RemoveMember removes userID from the member set, deleting the
	// room in the same step when userID is the last member. Reports
	// whether the room was deleted. Removing a non-member is a no-op.
	RemoveMember(ctx context.Context, roomID, userID string) (deleted bool, err error)
}

// MemoryStore is an in-memory implementation of Store. All membership
// mutations happen under one lock, which gives the same atomicity the
// SQLite driver gets from transactions.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewMemoryStore creates a new in-memory room store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (s *MemoryStore) Create(ctx context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyRoom(room)
	s.rooms[cp.ID] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, roomID string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *MemoryStore) GetForUser(ctx context.Context, roomID, userID string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok || !room.HasMember(userID) {
		return nil, ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Room
	for _, room := range s.rooms {
		if room.HasMember(userID) {
			out = append(out, copyRoom(room))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) AddMember(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.HasMember(userID) {
		return nil
	}
	room.MemberIDs = append(room.MemberIDs, userID)
	return nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, roomID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}

	members := room.MemberIDs[:0]
	for _, id := range room.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		delete(s.rooms, roomID)
		return true, nil
	}
	room.MemberIDs = members
	return false, nil
}

func copyRoom(room *Room) *Room {
	cp := *room
	cp.MemberIDs = append([]string(nil), room.MemberIDs...)
	return &cp
}

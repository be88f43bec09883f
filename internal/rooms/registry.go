package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
)

// UserResolver resolves invitee emails to users. Satisfied by
// identity.Directory.
type UserResolver interface {
	ByEmail(ctx context.Context, email string) (*identity.User, error)
}

// Registry enforces room and membership invariants over a Store.
type Registry struct {
	store Store
	users UserResolver
}

// NewRegistry creates a Registry.
func NewRegistry(store Store, users UserResolver) *Registry {
	return &Registry{store: store, users: users}
}

// Create makes a new room with the owner as sole member. Name
// uniqueness is scoped to the owner's rooms, not global.
func (g *Registry) Create(ctx context.Context, name, ownerID string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", fault.ErrInvalidInput)
	}

	existing, err := g.store.ListForUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", fault.ErrUnavailable, err)
	}
	for _, room := range existing {
		if room.Name == name {
			return nil, fmt.Errorf("%w: you already have a room named %q", ErrDuplicateName, name)
		}
	}

	room := &Room{
		ID:        uuid.New().String(),
		Name:      name,
		MemberIDs: []string{ownerID},
		CreatedAt: time.Now().UTC(),
	}
	if err := g.store.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: create room: %v", fault.ErrUnavailable, err)
	}
	return room, nil
}

// ListForUser returns the user's rooms ordered by name.
func (g *Registry) ListForUser(ctx context.Context, userID string) ([]*Room, error) {
	roomList, err := g.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", fault.ErrUnavailable, err)
	}
	return roomList, nil
}

// GetForUser is the authoritative authorization check: it returns the
// room only when userID is a member. A malformed id, an absent room,
// and a room the user is not in all yield fault.ErrNotFound so room
// ids cannot be enumerated.
func (g *Registry) GetForUser(ctx context.Context, roomID, userID string) (*Room, error) {
	if err := validRoomID(roomID); err != nil {
		return nil, fault.ErrNotFound
	}
	room, err := g.store.GetForUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get room: %v", fault.ErrUnavailable, err)
	}
	return room, nil
}

// AddMember adds the user to the room's member set. Adding an existing
// member is a no-op success.
func (g *Registry) AddMember(ctx context.Context, roomID, userID string) error {
	if err := validRoomID(roomID); err != nil {
		return err
	}
	if err := g.store.AddMember(ctx, roomID, userID); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return fault.ErrNotFound
		}
		return fmt.Errorf("%w: add member: %v", fault.ErrUnavailable, err)
	}
	return nil
}

// AddMemberByEmail adds the user with the given email, on behalf of
// inviterID. The inviter must already be a member; the self-serve path
// for non-members is join-via-link, not an email bypass. Resolving the
// email only after the permission check keeps user existence hidden
// from non-members.
func (g *Registry) AddMemberByEmail(ctx context.Context, roomID, inviterID, inviteeEmail string) (*identity.User, error) {
	if err := validRoomID(roomID); err != nil {
		return nil, err
	}

	room, err := g.store.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get room: %v", fault.ErrUnavailable, err)
	}
	if !room.HasMember(inviterID) {
		return nil, fmt.Errorf("%w: only members may add users to this room", fault.ErrForbidden)
	}

	invitee, err := g.users.ByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %q", fault.ErrNotFound, inviteeEmail)
		}
		return nil, err
	}

	if room.HasMember(invitee.ID) {
		// Already in; success so the caller's page can load.
		return invitee, nil
	}

	if err := g.store.AddMember(ctx, roomID, invitee.ID); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: add member: %v", fault.ErrUnavailable, err)
	}
	return invitee, nil
}

// RemoveMember takes the user out of the room. When the user is the
// last member the room is deleted in the same atomic step, so a room
// can never be observed with an empty member set. Reports whether the
// room was deleted.
func (g *Registry) RemoveMember(ctx context.Context, roomID, userID string) (bool, error) {
	if err := validRoomID(roomID); err != nil {
		return false, err
	}
	deleted, err := g.store.RemoveMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return false, fault.ErrNotFound
		}
		return false, fmt.Errorf("%w: remove member: %v", fault.ErrUnavailable, err)
	}
	return deleted, nil
}

// IsMember reports room membership without returning the room.
func (g *Registry) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	_, err := g.GetForUser(ctx, roomID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fault.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func validRoomID(roomID string) error {
	if uuid.Validate(roomID) != nil {
		return fmt.Errorf("%w: invalid room id", fault.ErrInvalidInput)
	}
	return nil
}

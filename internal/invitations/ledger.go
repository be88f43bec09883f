package invitations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/rooms"
)

// UserResolver resolves invitee emails. Satisfied by identity.Directory.
type UserResolver interface {
	ByEmail(ctx context.Context, email string) (*identity.User, error)
	ByID(ctx context.Context, id string) (*identity.User, error)
}

// Ledger coordinates invitations with the room registry.
type Ledger struct {
	store    Store
	registry *rooms.Registry
	users    UserResolver
}

// NewLedger creates a Ledger.
func NewLedger(store Store, registry *rooms.Registry, users UserResolver) *Ledger {
	return &Ledger{store: store, registry: registry, users: users}
}

// Invite creates a pending invitation from a member to a registered
// non-member. The room name and inviter name are captured now; later
// renames do not touch existing invitations.
func (l *Ledger) Invite(ctx context.Context, roomID, inviterID, inviteeEmail string) (*Invitation, error) {
	// Membership check doubles as the existence check: a non-member
	// inviter learns nothing about whether the room exists.
	room, err := l.registry.GetForUser(ctx, roomID, inviterID)
	if err != nil {
		return nil, err
	}

	invitee, err := l.users.ByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %q", fault.ErrNotFound, inviteeEmail)
		}
		return nil, err
	}

	if room.HasMember(invitee.ID) {
		return nil, fmt.Errorf("%w: %s is already a member", fault.ErrAlreadyInState, inviteeEmail)
	}

	inviter, err := l.users.ByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	inviterName := inviter.DisplayName
	if inviterName == "" {
		inviterName = inviter.Email
	}

	inv := &Invitation{
		ID:          uuid.New().String(),
		UserID:      invitee.ID,
		Kind:        KindRoomInvite,
		CreatedAt:   time.Now().UTC(),
		RoomID:      room.ID,
		RoomName:    room.Name,
		InviterID:   inviter.ID,
		InviterName: inviterName,
	}
	if err := l.store.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("%w: create invitation: %v", fault.ErrUnavailable, err)
	}
	return inv, nil
}

// ListFor returns the user's invitations, newest first.
func (l *Ledger) ListFor(ctx context.Context, userID string) ([]*Invitation, error) {
	invs, err := l.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list invitations: %v", fault.ErrUnavailable, err)
	}
	return invs, nil
}

// MarkRead flips read=true on all of the user's invitations. Called as
// a side effect of opening the notification view.
func (l *Ledger) MarkRead(ctx context.Context, userID string) error {
	if err := l.store.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: mark read: %v", fault.ErrUnavailable, err)
	}
	return nil
}

// Accept joins the recipient to the room, then deletes the invitation.
// The membership add happens first so a failure leaves the invitation
// intact; the conditional delete afterwards makes concurrent accepts
// resolve to one winner, with losers seeing fault.ErrNotFound.
func (l *Ledger) Accept(ctx context.Context, invitationID, actingUserID string) error {
	inv, err := l.ownedInvitation(ctx, invitationID, actingUserID)
	if err != nil {
		return err
	}

	if err := l.registry.AddMember(ctx, inv.RoomID, actingUserID); err != nil {
		return err
	}

	if err := l.store.Delete(ctx, inv.ID); err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return fault.ErrNotFound
		}
		return fmt.Errorf("%w: delete invitation: %v", fault.ErrUnavailable, err)
	}
	return nil
}

// Decline deletes the invitation with no membership side effect.
func (l *Ledger) Decline(ctx context.Context, invitationID, actingUserID string) error {
	inv, err := l.ownedInvitation(ctx, invitationID, actingUserID)
	if err != nil {
		return err
	}

	if err := l.store.Delete(ctx, inv.ID); err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return fault.ErrNotFound
		}
		return fmt.Errorf("%w: delete invitation: %v", fault.ErrUnavailable, err)
	}
	return nil
}

// JoinViaLink silently adds the user to the room, for visitors who got
// the room URL directly. A courtesy membership grant, not an invitation
// acceptance: no ledger row is consulted or created, and joining a room
// the user is already in is a no-op.
func (l *Ledger) JoinViaLink(ctx context.Context, roomID, userID string) error {
	return l.registry.AddMember(ctx, roomID, userID)
}

// UnreadCount returns the number of unread invitations for the user.
func (l *Ledger) UnreadCount(ctx context.Context, userID string) (int, error) {
	invs, err := l.ListFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, inv := range invs {
		if !inv.Read {
			n++
		}
	}
	return n, nil
}

// ownedInvitation fetches the invitation and verifies it targets the
// acting user. A foreign invitation reads as absent.
func (l *Ledger) ownedInvitation(ctx context.Context, invitationID, actingUserID string) (*Invitation, error) {
	if uuid.Validate(invitationID) != nil {
		return nil, fmt.Errorf("%w: invalid invitation id", fault.ErrInvalidInput)
	}
	inv, err := l.store.Get(ctx, invitationID)
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get invitation: %v", fault.ErrUnavailable, err)
	}
	if inv.UserID != actingUserID {
		return nil, fault.ErrNotFound
	}
	return inv, nil
}

package sqlite

import (
	"time"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

type userRow struct {
	ID                 string `gorm:"primaryKey"`
	Email              string `gorm:"uniqueIndex"`
	PasswordHash       string
	DisplayName        string
	AvatarURL          string
	EmailNotifications bool
	CreatedAt          time.Time
}

func (userRow) TableName() string { return "users" }

func toUserRow(u *identity.User) *userRow {
	return &userRow{
		ID:                 u.ID,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		DisplayName:        u.DisplayName,
		AvatarURL:          u.AvatarURL,
		EmailNotifications: u.EmailNotifications,
		CreatedAt:          u.CreatedAt,
	}
}

func (r *userRow) toUser() *identity.User {
	return &identity.User{
		ID:                 r.ID,
		Email:              r.Email,
		PasswordHash:       r.PasswordHash,
		DisplayName:        r.DisplayName,
		AvatarURL:          r.AvatarURL,
		EmailNotifications: r.EmailNotifications,
		CreatedAt:          r.CreatedAt,
	}
}

type roomRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	CreatedAt time.Time
}

func (roomRow) TableName() string { return "rooms" }

// memberRow is one row of the room membership join table. The
// composite primary key makes duplicate inserts conflict, which is
// what AddMember's ON CONFLICT DO NOTHING relies on.
type memberRow struct {
	RoomID string `gorm:"primaryKey"`
	UserID string `gorm:"primaryKey;index"`
}

func (memberRow) TableName() string { return "room_members" }

type invitationRow struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Kind        string
	Read        bool
	CreatedAt   time.Time
	RoomID      string
	RoomName    string
	InviterID   string
	InviterName string
}

func (invitationRow) TableName() string { return "invitations" }

func toInvitationRow(inv *invitations.Invitation) *invitationRow {
	return &invitationRow{
		ID:          inv.ID,
		UserID:      inv.UserID,
		Kind:        string(inv.Kind),
		Read:        inv.Read,
		CreatedAt:   inv.CreatedAt,
		RoomID:      inv.RoomID,
		RoomName:    inv.RoomName,
		InviterID:   inv.InviterID,
		InviterName: inv.InviterName,
	}
}

func (r *invitationRow) toInvitation() *invitations.Invitation {
	return &invitations.Invitation{
		ID:          r.ID,
		UserID:      r.UserID,
		Kind:        invitations.Kind(r.Kind),
		Read:        r.Read,
		CreatedAt:   r.CreatedAt,
		RoomID:      r.RoomID,
		RoomName:    r.RoomName,
		InviterID:   r.InviterID,
		InviterName: r.InviterName,
	}
}

type taskRow struct {
	ID          string `gorm:"primaryKey"`
	RoomID      string `gorm:"index"`
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     string
	CreatedAt   time.Time
}

func (taskRow) TableName() string { return "tasks" }

func toTaskRow(t *tasks.Task) *taskRow {
	return &taskRow{
		ID:          t.ID,
		RoomID:      t.RoomID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func (r *taskRow) toTask() *tasks.Task {
	return &tasks.Task{
		ID:          r.ID,
		RoomID:      r.RoomID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
	}
}

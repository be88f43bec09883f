package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/taskrooms/taskrooms/internal/invitations"
)

type invitationStore struct {
	d *Driver
}

func (s *invitationStore) Create(ctx context.Context, inv *invitations.Invitation) error {
	return s.d.db.WithContext(ctx).Create(toInvitationRow(inv)).Error
}

func (s *invitationStore) Get(ctx context.Context, id string) (*invitations.Invitation, error) {
	var row invitationRow
	err := s.d.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invitations.ErrInvitationNotFound
		}
		return nil, err
	}
	return row.toInvitation(), nil
}

func (s *invitationStore) ListForUser(ctx context.Context, userID string) ([]*invitations.Invitation, error) {
	var rows []*invitationRow
	err := s.d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*invitations.Invitation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toInvitation())
	}
	return out, nil
}

func (s *invitationStore) MarkAllRead(ctx context.Context, userID string) error {
	return s.d.db.WithContext(ctx).
		Model(&invitationRow{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// Delete is conditional: reporting the absent row is what lets two
// concurrent accepts of the same invitation resolve to one winner.
func (s *invitationStore) Delete(ctx context.Context, id string) error {
	res := s.d.db.WithContext(ctx).Delete(&invitationRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invitations.ErrInvitationNotFound
	}
	return nil
}

var _ invitations.Store = (*invitationStore)(nil)

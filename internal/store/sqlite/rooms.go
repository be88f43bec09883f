package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskrooms/taskrooms/internal/rooms"
)

type roomStore struct {
	d *Driver
}

func (s *roomStore) Create(ctx context.Context, room *rooms.Room) error {
	return s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &roomRow{ID: room.ID, Name: room.Name, CreatedAt: room.CreatedAt}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for _, userID := range room.MemberIDs {
			if err := tx.Create(&memberRow{RoomID: room.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *roomStore) Get(ctx context.Context, roomID string) (*rooms.Room, error) {
	var room *rooms.Room
	err := s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = loadRoom(tx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomStore) GetForUser(ctx context.Context, roomID, userID string) (*rooms.Room, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(userID) {
		return nil, rooms.ErrRoomNotFound
	}
	return room, nil
}

func (s *roomStore) ListForUser(ctx context.Context, userID string) ([]*rooms.Room, error) {
	var out []*rooms.Room
	err := s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roomIDs []string
		if err := tx.Model(&memberRow{}).Where("user_id = ?", userID).Pluck("room_id", &roomIDs).Error; err != nil {
			return err
		}
		if len(roomIDs) == 0 {
			return nil
		}
		var rows []*roomRow
		if err := tx.Where("id IN ?", roomIDs).Order("name").Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			memberIDs, err := loadMembers(tx, row.ID)
			if err != nil {
				return err
			}
			out = append(out, &rooms.Room{
				ID:        row.ID,
				Name:      row.Name,
				MemberIDs: memberIDs,
				CreatedAt: row.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *roomStore) AddMember(ctx context.Context, roomID, userID string) error {
	return s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomRow
		if err := tx.First(&row, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rooms.ErrRoomNotFound
			}
			return err
		}
		// ON CONFLICT DO NOTHING makes repeat adds a no-op success.
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&memberRow{RoomID: roomID, UserID: userID}).Error
	})
}

func (s *roomStore) RemoveMember(ctx context.Context, roomID, userID string) (bool, error) {
	var deleted bool
	err := s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomRow
		if err := tx.First(&row, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rooms.ErrRoomNotFound
			}
			return err
		}

		res := tx.Delete(&memberRow{}, "room_id = ? AND user_id = ?", roomID, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Not a member; nothing to do.
			return nil
		}

		var remaining int64
		if err := tx.Model(&memberRow{}).Where("room_id = ?", roomID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			// The last member left; the room goes with them, in the
			// same transaction so no empty room is ever observable.
			if err := tx.Delete(&roomRow{}, "id = ?", roomID).Error; err != nil {
				return err
			}
			deleted = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func loadRoom(tx *gorm.DB, roomID string) (*rooms.Room, error) {
	var row roomRow
	if err := tx.First(&row, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rooms.ErrRoomNotFound
		}
		return nil, err
	}
	memberIDs, err := loadMembers(tx, roomID)
	if err != nil {
		return nil, err
	}
	return &rooms.Room{
		ID:        row.ID,
		Name:      row.Name,
		MemberIDs: memberIDs,
		CreatedAt: row.CreatedAt,
	}, nil
}

func loadMembers(tx *gorm.DB, roomID string) ([]string, error) {
	var memberIDs []string
	err := tx.Model(&memberRow{}).Where("room_id = ?", roomID).Order("user_id").Pluck("user_id", &memberIDs).Error
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}

var _ rooms.Store = (*roomStore)(nil)

package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/taskrooms/taskrooms/internal/tasks"
)

type taskStore struct {
	d *Driver
}

func (s *taskStore) Create(ctx context.Context, task *tasks.Task) error {
	return s.d.db.WithContext(ctx).Create(toTaskRow(task)).Error
}

func (s *taskStore) Get(ctx context.Context, id string) (*tasks.Task, error) {
	var row taskRow
	err := s.d.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tasks.ErrTaskNotFound
		}
		return nil, err
	}
	return row.toTask(), nil
}

func (s *taskStore) ListForRoom(ctx context.Context, roomID string) ([]*tasks.Task, error) {
	var rows []*taskRow
	err := s.d.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*tasks.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toTask())
	}
	return out, nil
}

func (s *taskStore) Update(ctx context.Context, task *tasks.Task) error {
	return s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current taskRow
		if err := tx.First(&current, "id = ?", task.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tasks.ErrTaskNotFound
			}
			return err
		}
		return tx.Save(toTaskRow(task)).Error
	})
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	res := s.d.db.WithContext(ctx).Delete(&taskRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

var _ tasks.Store = (*taskStore)(nil)

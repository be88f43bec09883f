package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/taskrooms/taskrooms/internal/identity"
)

type userStore struct {
	d *Driver
}

func (s *userStore) Create(ctx context.Context, user *identity.User) error {
	return s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userRow
		err := tx.First(&existing, "email = ?", user.Email).Error
		if err == nil {
			return identity.ErrUserExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(toUserRow(user)).Error
	})
}

func (s *userStore) ByID(ctx context.Context, id string) (*identity.User, error) {
	var row userRow
	err := s.d.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *userStore) ByEmail(ctx context.Context, email string) (*identity.User, error) {
	var row userRow
	err := s.d.db.WithContext(ctx).First(&row, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (s *userStore) Update(ctx context.Context, user *identity.User) error {
	return s.d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current userRow
		if err := tx.First(&current, "id = ?", user.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return identity.ErrUserNotFound
			}
			return err
		}
		if user.Email != current.Email {
			var collision userRow
			err := tx.First(&collision, "email = ? AND id <> ?", user.Email, user.ID).Error
			if err == nil {
				return identity.ErrUserExists
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Save(toUserRow(user)).Error
	})
}

var _ identity.UserRepo = (*userStore)(nil)

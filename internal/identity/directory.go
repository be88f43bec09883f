package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/taskrooms/taskrooms/internal/fault"
)

// MinPasswordLength is the minimum accepted password length at signup
// and on password change.
const MinPasswordLength = 8

// Directory is the user directory: signup, credential checks, and
// profile mutation over a UserRepo.
type Directory struct {
	repo UserRepo
	auth *UserAuth
}

// NewDirectory creates a Directory over the given repo.
func NewDirectory(repo UserRepo, auth *UserAuth) *Directory {
	return &Directory{repo: repo, auth: auth}
}

// Signup creates a new user from email and password.
func (d *Directory) Signup(ctx context.Context, email, password string) (*User, error) {
	email, err := validEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", fault.ErrInvalidInput, MinPasswordLength)
	}

	hash, err := d.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:                 uuid.New().String(),
		Email:              email,
		PasswordHash:       hash,
		EmailNotifications: true,
		CreatedAt:          time.Now().UTC(),
	}

	if err := d.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, fmt.Errorf("%w: a user with this email already exists", fault.ErrAlreadyInState)
		}
		return nil, fmt.Errorf("%w: create user: %v", fault.ErrUnavailable, err)
	}

	return user, nil
}

// Authenticate verifies email and password, returning the user on
// success and ErrInvalidCredentials otherwise. An unknown email and a
// wrong password are indistinguishable to the caller.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := d.repo.ByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %v", fault.ErrUnavailable, err)
	}

	if err := d.auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ByEmail looks up a user by email.
func (d *Directory) ByEmail(ctx context.Context, email string) (*User, error) {
	user, err := d.repo.ByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %v", fault.ErrUnavailable, err)
	}
	return user, nil
}

// ByID looks up a user by id.
func (d *Directory) ByID(ctx context.Context, id string) (*User, error) {
	user, err := d.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %v", fault.ErrUnavailable, err)
	}
	return user, nil
}

// AccountUpdate describes an account mutation. Nil fields are unchanged.
type AccountUpdate struct {
	Email    *string
	Password *string
}

// ProfileUpdate describes a profile mutation. Nil fields are unchanged.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
}

// UpdateAccount changes email and/or password. The returned user
// reflects the new state; callers owning a session must re-issue it
// when the email changed.
func (d *Directory) UpdateAccount(ctx context.Context, userID string, upd AccountUpdate) (*User, error) {
	user, err := d.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email, err := validEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", fault.ErrInvalidInput, MinPasswordLength)
		}
		hash, err := d.auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	return user, d.save(ctx, user)
}

// UpdateProfile changes display name and/or avatar URL. Both fields are
// embedded in the session payload, so callers must re-issue the session.
func (d *Directory) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	user, err := d.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		user.DisplayName = *upd.DisplayName
	}
	if upd.AvatarURL != nil {
		user.AvatarURL = *upd.AvatarURL
	}

	return user, d.save(ctx, user)
}

// SetEmailNotifications flips the notification preference. Not part of
// the session payload; no session refresh needed.
func (d *Directory) SetEmailNotifications(ctx context.Context, userID string, enabled bool) (*User, error) {
	user, err := d.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.EmailNotifications = enabled
	return user, d.save(ctx, user)
}

func (d *Directory) save(ctx context.Context, user *User) error {
	if err := d.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			return fmt.Errorf("%w: email already in use", fault.ErrAlreadyInState)
		case errors.Is(err, ErrUserNotFound):
			return fault.ErrNotFound
		default:
			return fmt.Errorf("%w: update user: %v", fault.ErrUnavailable, err)
		}
	}
	return nil
}

func validEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email address", fault.ErrInvalidInput)
	}
	return email, nil
}

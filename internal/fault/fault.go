// Package fault defines the error taxonomy shared across components.
//
// Components resolve validation and permission failures at their
// boundary and return one of these sentinels (usually wrapped with
// context). NotFound deliberately covers both "absent" and "access
// denied" so callers cannot distinguish a room they may not see from
// a room that does not exist.
package fault

import "errors"

var (
	// ErrInvalidInput marks malformed ids, emails, or payloads.
	// Rejected locally, never reaches the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an absent entity or denied access.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an authenticated caller lacking permission,
	// used only where entity existence is already known to the caller.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyInState marks idempotent no-ops, such as inviting a
	// user who is already a member.
	ErrAlreadyInState = errors.New("already in state")

	// ErrUnavailable marks an unreachable persistence layer or remote
	// collaborator. Never retried internally; retry policy belongs to
	// the caller.
	ErrUnavailable = errors.New("unavailable")
)

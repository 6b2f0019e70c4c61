package store

import "errors"

// Common store errors returned by implementations of the store interfaces.
// Callers should use errors.Is to check for these conditions rather than
// inspecting error strings.
var (
	// ErrTaskNotFound indicates the requested task does not exist, or the
	// ownership filter on a conditional mutation matched no document.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotificationNotFound indicates the requested notification does not
	// exist or is not owned by the given user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrUserNotFound indicates no user profile exists for the given uid.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates a user profile already exists for the given uid.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidEntity indicates an entity failed validation before a write.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrChangeStreamClosed indicates a change stream ended without error,
	// typically because the underlying cursor was closed.
	ErrChangeStreamClosed = errors.New("change stream closed")
)

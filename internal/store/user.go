package store

import (
	"context"

	"github.com/checkit/checkit-server/internal/domain"
)

// ProfilePatch holds the mutable fields of a user profile.
type ProfilePatch struct {
	DisplayName string
	PhotoURL    string
	PhoneNumber string
}

// UserStore defines the persistence operations for user profiles.
type UserStore interface {
	// Create persists a new user profile.
	// Returns ErrUserExists if a profile with the same uid already exists.
	Create(ctx context.Context, user *domain.User) error

	// GetByUID retrieves a user profile by external uid.
	// Returns ErrUserNotFound if it doesn't exist.
	GetByUID(ctx context.Context, uid string) (*domain.User, error)

	// Exists reports whether a profile with the given uid exists.
	Exists(ctx context.Context, uid string) (bool, error)

	// UpdateProfile applies the patch to the profile with the given uid.
	// Returns ErrUserNotFound if no profile matches.
	UpdateProfile(ctx context.Context, uid string, patch ProfilePatch) error
}

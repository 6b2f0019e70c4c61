package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// UserService handles user profile registration and maintenance.
type UserService interface {
	// Register persists a new user profile.
	Register(ctx context.Context, user *domain.User) error

	// GetProfile retrieves a user profile by external uid.
	GetProfile(ctx context.Context, uid string) (*domain.User, error)

	// Exists reports whether a profile with the given uid exists.
	Exists(ctx context.Context, uid string) (bool, error)

	// UpdateProfile applies the patch to the profile with the given uid.
	UpdateProfile(ctx context.Context, uid string, patch store.ProfilePatch) error
}

type userService struct {
	users  store.UserStore
	logger *slog.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, logger *slog.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger.With("component", "user_service"),
	}
}

func (s *userService) Register(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "uid", user.UID)
	return nil
}

func (s *userService) GetProfile(ctx context.Context, uid string) (*domain.User, error) {
	return s.users.GetByUID(ctx, uid)
}

func (s *userService) Exists(ctx context.Context, uid string) (bool, error) {
	return s.users.Exists(ctx, uid)
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, patch store.ProfilePatch) error {
	if err := s.users.UpdateProfile(ctx, uid, patch); err != nil {
		return err
	}

	s.logger.Info("user profile updated", "uid", uid)
	return nil
}

package service

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/store"
)

// NotificationService handles the single user-driven notification mutation:
// marking a notification as read. Creation happens on the sweep path only.
type NotificationService interface {
	// MarkRead sets the read flag on the notification owned by uid.
	MarkRead(ctx context.Context, id primitive.ObjectID, uid string) error
}

type notificationService struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

var _ NotificationService = (*notificationService)(nil)

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications store.NotificationStore, logger *slog.Logger) NotificationService {
	return &notificationService{
		notifications: notifications,
		logger:        logger.With("component", "notification_service"),
	}
}

func (s *notificationService) MarkRead(ctx context.Context, id primitive.ObjectID, uid string) error {
	if err := s.notifications.MarkRead(ctx, id, uid); err != nil {
		return err
	}

	s.logger.Info("notification marked read", "notification_id", id.Hex(), "uid", uid)
	return nil
}

package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
)

// NotificationStore defines the persistence operations for notifications.
type NotificationStore interface {
	// Create persists a new notification.
	Create(ctx context.Context, notification *domain.Notification) error

	// Get retrieves a notification by ID.
	// Returns ErrNotificationNotFound if it doesn't exist.
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Notification, error)

	// FindByUID returns all of the user's notifications, newest first.
	FindByUID(ctx context.Context, uid string) ([]domain.Notification, error)

	// CountUnread counts the user's unread notifications.
	CountUnread(ctx context.Context, uid string) (int64, error)

	// MarkRead sets the read flag on the notification owned by uid.
	// Returns ErrNotificationNotFound if no owned notification matches.
	MarkRead(ctx context.Context, id primitive.ObjectID, uid string) error

	// Watch opens a change feed over the notification collection.
	Watch(ctx context.Context) (ChangeStream, error)
}

package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// MongoNotificationStore implements store.NotificationStore against the
// Notifications collection.
type MongoNotificationStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.NotificationStore = (*MongoNotificationStore)(nil)

// NewMongoNotificationStore creates a new MongoNotificationStore using the
// given database.
func NewMongoNotificationStore(db *mongo.Database, logger *slog.Logger) *MongoNotificationStore {
	return &MongoNotificationStore{
		coll:   db.Collection(notificationsCollection),
		logger: logger.With("component", "notification_store"),
	}
}

// Create persists a new notification after validating it.
func (s *MongoNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	res, err := s.coll.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.ID = id
	}
	return nil
}

// Get retrieves a notification by ID.
func (s *MongoNotificationStore) Get(
	ctx context.Context,
	id primitive.ObjectID,
) (*domain.Notification, error) {
	var notification domain.Notification
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// FindByUID returns all of the user's notifications, newest first.
func (s *MongoNotificationStore) FindByUID(ctx context.Context, uid string) ([]domain.Notification, error) {
	cursor, err := s.coll.Find(ctx,
		bson.D{{Key: "uid", Value: uid}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}

	var notifications []domain.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts the user's unread notifications.
func (s *MongoNotificationStore) CountUnread(ctx context.Context, uid string) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "uid", Value: uid},
		{Key: "readStatus", Value: false},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead sets the read flag on the notification owned by uid. This is a
// plain conditional update: a missing or foreign notification is reported as
// not found rather than upserted.
func (s *MongoNotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID, uid string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "uid", Value: uid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "readStatus", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotificationNotFound
	}
	return nil
}

// Watch opens a change feed over the notification collection.
func (s *MongoNotificationStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return watch(ctx, s.coll)
}

package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// MongoUserStore implements store.UserStore against the Users collection.
type MongoUserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*MongoUserStore)(nil)

// NewMongoUserStore creates a new MongoUserStore using the given database.
func NewMongoUserStore(db *mongo.Database, logger *slog.Logger) *MongoUserStore {
	return &MongoUserStore{
		coll:   db.Collection(usersCollection),
		logger: logger.With("component", "user_store"),
	}
}

// Create persists a new user profile after validating it.
func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	exists, err := s.Exists(ctx, user.UID)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrUserExists
	}

	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// GetByUID retrieves a user profile by external uid.
func (s *MongoUserStore) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	var user domain.User
	err := s.coll.FindOne(ctx, bson.D{{Key: "uid", Value: uid}}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Exists reports whether a profile with the given uid exists.
func (s *MongoUserStore) Exists(ctx context.Context, uid string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{{Key: "uid", Value: uid}})
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile applies the patch to the profile with the given uid. A
// missing profile is reported as not found rather than upserted.
func (s *MongoUserStore) UpdateProfile(ctx context.Context, uid string, patch store.ProfilePatch) error {
	set := bson.D{
		{Key: "displayName", Value: patch.DisplayName},
		{Key: "photoURL", Value: patch.PhotoURL},
		{Key: "phoneNumber", Value: patch.PhoneNumber},
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "uid", Value: uid}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

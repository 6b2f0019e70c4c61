package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// openStatuses is the filter value for tasks that count as open.
var openStatuses = bson.D{{Key: "$in", Value: bson.A{
	domain.TaskStatusUpcoming, domain.TaskStatusUnfinished,
}}}

// newestFirst sorts by creation time, newest first.
var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// MongoTaskStore implements store.TaskStore against the Tasks collection.
type MongoTaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.TaskStore = (*MongoTaskStore)(nil)

// NewMongoTaskStore creates a new MongoTaskStore using the given database.
func NewMongoTaskStore(db *mongo.Database, logger *slog.Logger) *MongoTaskStore {
	return &MongoTaskStore{
		coll:   db.Collection(tasksCollection),
		logger: logger.With("component", "task_store"),
	}
}

// Create persists a new task after validating it.
func (s *MongoTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	res, err := s.coll.InsertOne(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		task.ID = id
	}
	return nil
}

// Get retrieves a task by ID.
func (s *MongoTaskStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	var task domain.Task
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// Update applies the patch to the task owned by uid. The filter includes the
// owner so a foreign task is indistinguishable from a missing one.
func (s *MongoTaskStore) Update(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
	patch store.TaskPatch,
) error {
	set := bson.D{
		{Key: "name", Value: patch.Name},
		{Key: "description", Value: patch.Description},
		{Key: "dueDateTime", Value: patch.Due},
		{Key: "reminderDateTime", Value: patch.Reminder},
		{Key: "priority", Value: patch.Priority},
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "uid", Value: uid}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Complete moves the task owned by uid to the finished status.
func (s *MongoTaskStore) Complete(ctx context.Context, id primitive.ObjectID, uid string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "uid", Value: uid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: domain.TaskStatusFinished}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete removes the task owned by uid.
func (s *MongoTaskStore) Delete(ctx context.Context, id primitive.ObjectID, uid string) error {
	res, err := s.coll.DeleteOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "uid", Value: uid}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// FindOpen returns the user's upcoming and unfinished tasks, newest first.
func (s *MongoTaskStore) FindOpen(ctx context.Context, uid string) ([]domain.Task, error) {
	filter := bson.D{
		{Key: "uid", Value: uid},
		{Key: "status", Value: openStatuses},
	}
	return s.find(ctx, filter, newestFirst)
}

// FindOpenByName returns the user's open tasks whose name matches the query
// case-insensitively, newest first.
func (s *MongoTaskStore) FindOpenByName(ctx context.Context, uid, query string) ([]domain.Task, error) {
	filter := bson.D{
		{Key: "uid", Value: uid},
		{Key: "status", Value: openStatuses},
		{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}},
	}
	return s.find(ctx, filter, newestFirst)
}

// FindDueBetween returns the user's open tasks due in [from, to), newest first.
func (s *MongoTaskStore) FindDueBetween(
	ctx context.Context,
	uid string,
	from, to time.Time,
) ([]domain.Task, error) {
	filter := bson.D{
		{Key: "uid", Value: uid},
		{Key: "status", Value: openStatuses},
		{Key: "dueDateTime", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lt", Value: to},
		}},
	}
	return s.find(ctx, filter, newestFirst)
}

// FindAll returns every task of the user regardless of status, newest first.
func (s *MongoTaskStore) FindAll(ctx context.Context, uid string) ([]domain.Task, error) {
	return s.find(ctx, bson.D{{Key: "uid", Value: uid}}, newestFirst)
}

// CountByStatus counts the user's tasks with the given status.
func (s *MongoTaskStore) CountByStatus(
	ctx context.Context,
	uid string,
	status domain.TaskStatus,
) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "uid", Value: uid},
		{Key: "status", Value: status},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// FindUpcoming returns all upcoming tasks across users.
func (s *MongoTaskStore) FindUpcoming(ctx context.Context) ([]domain.Task, error) {
	return s.find(ctx, bson.D{{Key: "status", Value: domain.TaskStatusUpcoming}})
}

// MarkUnfinished transitions the task to unfinished if it is still upcoming.
// The status condition in the filter is what makes concurrent sweeps safe:
// only one writer can observe a modified count of 1.
func (s *MongoTaskStore) MarkUnfinished(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: domain.TaskStatusUpcoming},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: domain.TaskStatusUnfinished}}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark task unfinished: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// MarkReminderFired sets the reminder-fired flag if the task is still
// upcoming and the flag is unset.
func (s *MongoTaskStore) MarkReminderFired(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: domain.TaskStatusUpcoming},
			{Key: "reminderFired", Value: false},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "reminderFired", Value: true}}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder fired: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// Watch opens a change feed over the task collection.
func (s *MongoTaskStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return watch(ctx, s.coll)
}

// find runs a query and decodes the full result set.
func (s *MongoTaskStore) find(
	ctx context.Context,
	filter bson.D,
	opts ...*options.FindOptions,
) ([]domain.Task, error) {
	cursor, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	var tasks []domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/checkit/checkit-server/internal/store"
)

// changeEvent is the subset of a change stream document we decode. Delete
// events carry no full document, so only the key is extracted; consumers
// re-fetch the document when they need its body.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// changeStream adapts a driver change stream to store.ChangeStream.
type changeStream struct {
	cs *mongo.ChangeStream
}

var _ store.ChangeStream = (*changeStream)(nil)

// watch opens a change stream over coll restricted to insert, update and
// delete operations.
func watch(ctx context.Context, coll *mongo.Collection) (store.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "delete"}},
			}},
		}}},
	}

	cs, err := coll.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream on %s: %w", coll.Name(), err)
	}

	return &changeStream{cs: cs}, nil
}

// Next blocks until the next change arrives or the stream ends.
func (s *changeStream) Next(ctx context.Context) (store.Change, error) {
	for s.cs.Next(ctx) {
		var event changeEvent
		if err := s.cs.Decode(&event); err != nil {
			return store.Change{}, fmt.Errorf("failed to decode change event: %w", err)
		}

		change := store.Change{DocumentID: event.DocumentKey.ID}
		switch event.OperationType {
		case "insert":
			change.Type = store.ChangeInsert
		case "update":
			change.Type = store.ChangeUpdate
		case "delete":
			change.Type = store.ChangeDelete
		default:
			// Filtered out by the pipeline; skip if one slips through.
			continue
		}
		return change, nil
	}

	if err := s.cs.Err(); err != nil {
		return store.Change{}, fmt.Errorf("change stream error: %w", err)
	}
	return store.Change{}, store.ErrChangeStreamClosed
}

// Close releases the underlying cursor.
func (s *changeStream) Close(ctx context.Context) error {
	return s.cs.Close(ctx)
}

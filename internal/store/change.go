package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChangeType identifies the kind of mutation observed on a collection.
type ChangeType string

// Change feed operation types.
const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Change is a single event from a collection change feed. Delete events
// carry only the document key; the document body is gone by the time the
// event is observed.
type Change struct {
	Type       ChangeType
	DocumentID primitive.ObjectID
}

// ChangeStream is a live feed of collection changes. Next blocks until an
// event arrives, the stream fails, or ctx is done. A stream that ends
// without a driver error reports ErrChangeStreamClosed.
type ChangeStream interface {
	Next(ctx context.Context) (Change, error)
	Close(ctx context.Context) error
}

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
)

// TaskPatch holds the mutable fields of a task for an owner-scoped update.
// Nil pointer fields clear the corresponding optional instant.
type TaskPatch struct {
	Name        string
	Description string
	Due         *time.Time
	Reminder    *time.Time
	Priority    domain.TaskPriority
}

// TaskStore defines the persistence operations for tasks.
//
// All mutations that take a uid are conditional on ownership: a filter that
// matches no document returns ErrTaskNotFound rather than writing anything.
// MarkUnfinished and MarkReminderFired are the sweep-path transitions; they
// are conditional on the task still being in the state the sweep observed,
// and report through their boolean result whether this call performed the
// transition.
type TaskStore interface {
	// Create persists a new task.
	Create(ctx context.Context, task *domain.Task) error

	// Get retrieves a task by ID. Returns ErrTaskNotFound if it doesn't exist.
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Task, error)

	// Update applies the patch to the task owned by uid.
	Update(ctx context.Context, id primitive.ObjectID, uid string, patch TaskPatch) error

	// Complete moves the task owned by uid to the finished status.
	Complete(ctx context.Context, id primitive.ObjectID, uid string) error

	// Delete removes the task owned by uid.
	Delete(ctx context.Context, id primitive.ObjectID, uid string) error

	// FindOpen returns the user's upcoming and unfinished tasks, newest first.
	FindOpen(ctx context.Context, uid string) ([]domain.Task, error)

	// FindOpenByName returns the user's open tasks whose name matches the
	// query case-insensitively, newest first.
	FindOpenByName(ctx context.Context, uid, query string) ([]domain.Task, error)

	// FindDueBetween returns the user's open tasks due in [from, to), newest first.
	FindDueBetween(ctx context.Context, uid string, from, to time.Time) ([]domain.Task, error)

	// FindAll returns every task of the user regardless of status, newest first.
	FindAll(ctx context.Context, uid string) ([]domain.Task, error)

	// CountByStatus counts the user's tasks with the given status.
	CountByStatus(ctx context.Context, uid string, status domain.TaskStatus) (int64, error)

	// FindUpcoming returns all upcoming tasks across users; these are the
	// sweep candidates.
	FindUpcoming(ctx context.Context) ([]domain.Task, error)

	// MarkUnfinished transitions the task to unfinished if it is still
	// upcoming. Returns true iff this call performed the transition.
	MarkUnfinished(ctx context.Context, id primitive.ObjectID) (bool, error)

	// MarkReminderFired sets the reminder-fired flag if the task is still
	// upcoming and the flag is unset. Returns true iff this call set it.
	MarkReminderFired(ctx context.Context, id primitive.ObjectID) (bool, error)

	// Watch opens a change feed over the task collection.
	Watch(ctx context.Context) (ChangeStream, error)
}

package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// fakeTaskStore implements store.TaskStore with overridable hooks for the
// methods this package exercises.
type fakeTaskStore struct {
	createFn         func(ctx context.Context, task *domain.Task) error
	updateFn         func(ctx context.Context, id primitive.ObjectID, uid string, patch store.TaskPatch) error
	completeFn       func(ctx context.Context, id primitive.ObjectID, uid string) error
	deleteFn         func(ctx context.Context, id primitive.ObjectID, uid string) error
	findOpenFn       func(ctx context.Context, uid string) ([]domain.Task, error)
	findOpenByNameFn func(ctx context.Context, uid, query string) ([]domain.Task, error)
	findDueBetweenFn func(ctx context.Context, uid string, from, to time.Time) ([]domain.Task, error)
	findAllFn        func(ctx context.Context, uid string) ([]domain.Task, error)
	countByStatusFn  func(ctx context.Context, uid string, status domain.TaskStatus) (int64, error)
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if f.createFn != nil {
		return f.createFn(ctx, task)
	}
	return nil
}

func (f *fakeTaskStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) Update(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
	patch store.TaskPatch,
) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, uid, patch)
	}
	return nil
}

func (f *fakeTaskStore) Complete(ctx context.Context, id primitive.ObjectID, uid string) error {
	if f.completeFn != nil {
		return f.completeFn(ctx, id, uid)
	}
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id primitive.ObjectID, uid string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, uid)
	}
	return nil
}

func (f *fakeTaskStore) FindOpen(ctx context.Context, uid string) ([]domain.Task, error) {
	if f.findOpenFn != nil {
		return f.findOpenFn(ctx, uid)
	}
	return nil, nil
}

func (f *fakeTaskStore) FindOpenByName(
	ctx context.Context,
	uid, query string,
) ([]domain.Task, error) {
	if f.findOpenByNameFn != nil {
		return f.findOpenByNameFn(ctx, uid, query)
	}
	return nil, nil
}

func (f *fakeTaskStore) FindDueBetween(
	ctx context.Context,
	uid string,
	from, to time.Time,
) ([]domain.Task, error) {
	if f.findDueBetweenFn != nil {
		return f.findDueBetweenFn(ctx, uid, from, to)
	}
	return nil, nil
}

func (f *fakeTaskStore) FindAll(ctx context.Context, uid string) ([]domain.Task, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, uid)
	}
	return nil, nil
}

func (f *fakeTaskStore) CountByStatus(
	ctx context.Context,
	uid string,
	status domain.TaskStatus,
) (int64, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx, uid, status)
	}
	return 0, nil
}

func (f *fakeTaskStore) FindUpcoming(ctx context.Context) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) MarkUnfinished(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return false, nil
}

func (f *fakeTaskStore) MarkReminderFired(
	ctx context.Context,
	id primitive.ObjectID,
) (bool, error) {
	return false, nil
}

func (f *fakeTaskStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return nil, store.ErrChangeStreamClosed
}

// fakeNotificationStore implements store.NotificationStore with overridable
// hooks.
type fakeNotificationStore struct {
	countUnreadFn func(ctx context.Context, uid string) (int64, error)
	findByUIDFn   func(ctx context.Context, uid string) ([]domain.Notification, error)
	markReadFn    func(ctx context.Context, id primitive.ObjectID, uid string) error
}

var _ store.NotificationStore = (*fakeNotificationStore)(nil)

func (f *fakeNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	return nil
}

func (f *fakeNotificationStore) Get(
	ctx context.Context,
	id primitive.ObjectID,
) (*domain.Notification, error) {
	return nil, store.ErrNotificationNotFound
}

func (f *fakeNotificationStore) FindByUID(
	ctx context.Context,
	uid string,
) ([]domain.Notification, error) {
	if f.findByUIDFn != nil {
		return f.findByUIDFn(ctx, uid)
	}
	return nil, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, uid string) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, uid)
	}
	return 0, nil
}

func (f *fakeNotificationStore) MarkRead(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, id, uid)
	}
	return nil
}

func (f *fakeNotificationStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return nil, store.ErrChangeStreamClosed
}

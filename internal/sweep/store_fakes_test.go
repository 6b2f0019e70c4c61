package sweep

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// fakeTaskStore implements store.TaskStore with overridable hooks for the
// sweep-path methods. The rest of the interface is unused by this package.
type fakeTaskStore struct {
	findUpcomingFn      func(ctx context.Context) ([]domain.Task, error)
	markUnfinishedFn    func(ctx context.Context, id primitive.ObjectID) (bool, error)
	markReminderFiredFn func(ctx context.Context, id primitive.ObjectID) (bool, error)
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) FindUpcoming(ctx context.Context) ([]domain.Task, error) {
	if f.findUpcomingFn != nil {
		return f.findUpcomingFn(ctx)
	}
	return nil, nil
}

func (f *fakeTaskStore) MarkUnfinished(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if f.markUnfinishedFn != nil {
		return f.markUnfinishedFn(ctx, id)
	}
	return false, nil
}

func (f *fakeTaskStore) MarkReminderFired(
	ctx context.Context,
	id primitive.ObjectID,
) (bool, error) {
	if f.markReminderFiredFn != nil {
		return f.markReminderFiredFn(ctx, id)
	}
	return false, nil
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error { return nil }

func (f *fakeTaskStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) Update(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
	patch store.TaskPatch,
) error {
	return nil
}

func (f *fakeTaskStore) Complete(ctx context.Context, id primitive.ObjectID, uid string) error {
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id primitive.ObjectID, uid string) error {
	return nil
}

func (f *fakeTaskStore) FindOpen(ctx context.Context, uid string) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) FindOpenByName(
	ctx context.Context,
	uid, query string,
) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) FindDueBetween(
	ctx context.Context,
	uid string,
	from, to time.Time,
) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) FindAll(ctx context.Context, uid string) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) CountByStatus(
	ctx context.Context,
	uid string,
	status domain.TaskStatus,
) (int64, error) {
	return 0, nil
}

func (f *fakeTaskStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return nil, store.ErrChangeStreamClosed
}

// fakeNotificationStore records created notifications, safe for use from
// concurrent sweep workers.
type fakeNotificationStore struct {
	mu       sync.Mutex
	created  []domain.Notification
	createFn func(ctx context.Context, notification *domain.Notification) error
}

var _ store.NotificationStore = (*fakeNotificationStore)(nil)

func (f *fakeNotificationStore) Create(
	ctx context.Context,
	notification *domain.Notification,
) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, notification); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationStore) all() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.created...)
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
	return nil, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, uid string) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) MarkRead(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
) error {
	return nil
}

func (f *fakeNotificationStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return nil, store.ErrChangeStreamClosed
}

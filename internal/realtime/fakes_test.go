package realtime

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/store"
)

// scriptedStream is a change stream fed by the test.
type scriptedStream struct {
	ch chan store.Change
}

func newScriptedStream() *scriptedStream {
	return &scriptedStream{ch: make(chan store.Change, 16)}
}

func (s *scriptedStream) push(change store.Change) {
	s.ch <- change
}

func (s *scriptedStream) Next(ctx context.Context) (store.Change, error) {
	select {
	case <-ctx.Done():
		return store.Change{}, ctx.Err()
	case change, ok := <-s.ch:
		if !ok {
			return store.Change{}, store.ErrChangeStreamClosed
		}
		return change, nil
	}
}

func (s *scriptedStream) Close(ctx context.Context) error { return nil }

// fakeTaskStore implements store.TaskStore; only Get and Watch matter to the
// broker.
type fakeTaskStore struct {
	mu     sync.Mutex
	byID   map[primitive.ObjectID]*domain.Task
	stream *scriptedStream
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		byID:   make(map[primitive.ObjectID]*domain.Task),
		stream: newScriptedStream(),
	}
}

func (f *fakeTaskStore) put(task *domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[task.ID] = task
}

func (f *fakeTaskStore) remove(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

func (f *fakeTaskStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.byID[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return f.stream, nil
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error { return nil }

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

// fakeNotificationStore implements store.NotificationStore; only Get and
// Watch matter to the broker.
type fakeNotificationStore struct {
	mu     sync.Mutex
	byID   map[primitive.ObjectID]*domain.Notification
	stream *scriptedStream
}

var _ store.NotificationStore = (*fakeNotificationStore)(nil)

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		byID:   make(map[primitive.ObjectID]*domain.Notification),
		stream: newScriptedStream(),
	}
}

func (f *fakeNotificationStore) put(notification *domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[notification.ID] = notification
}

func (f *fakeNotificationStore) Get(
	ctx context.Context,
	id primitive.ObjectID,
) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	return notification, nil
}

func (f *fakeNotificationStore) Watch(ctx context.Context) (store.ChangeStream, error) {
	return f.stream, nil
}

func (f *fakeNotificationStore) Create(
	ctx context.Context,
	notification *domain.Notification,
) error {
	return nil
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

// fakeQueryService returns canned view data and records which views were
// recomputed.
type fakeQueryService struct {
	mu    sync.Mutex
	calls []string

	openTasks     []domain.Task
	searchResults []domain.Task
	todayTasks    []domain.Task
	allTasks      []domain.Task
	counts        service.StatusCounts
	amounts       service.Amounts
	unread        int64
	notifications []domain.Notification
}

var _ service.QueryService = (*fakeQueryService)(nil)

func (f *fakeQueryService) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeQueryService) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeQueryService) OpenTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	f.record("OpenTasks")
	return f.openTasks, nil
}

func (f *fakeQueryService) SearchOpenTasks(
	ctx context.Context,
	uid, query string,
) ([]domain.Task, error) {
	f.record("SearchOpenTasks")
	return f.searchResults, nil
}

func (f *fakeQueryService) TodayTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	f.record("TodayTasks")
	return f.todayTasks, nil
}

func (f *fakeQueryService) AllTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	f.record("AllTasks")
	return f.allTasks, nil
}

func (f *fakeQueryService) StatusCounts(
	ctx context.Context,
	uid string,
) (service.StatusCounts, error) {
	f.record("StatusCounts")
	return f.counts, nil
}

func (f *fakeQueryService) Amounts(ctx context.Context, uid string) (service.Amounts, error) {
	f.record("Amounts")
	return f.amounts, nil
}

func (f *fakeQueryService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	f.record("UnreadCount")
	return f.unread, nil
}

func (f *fakeQueryService) Notifications(
	ctx context.Context,
	uid string,
) ([]domain.Notification, error) {
	f.record("Notifications")
	return f.notifications, nil
}

// recordingEmitter captures emitted events in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
	err    error
}

type emittedEvent struct {
	name string
	data any
}

func (e *recordingEmitter) Emit(event string, data any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, emittedEvent{name: event, data: data})
	return nil
}

func (e *recordingEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var names []string
	for _, event := range e.events {
		names = append(names, event.name)
	}
	return names
}

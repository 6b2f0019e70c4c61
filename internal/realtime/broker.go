package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/checkit/checkit-server/internal/store"
)

// Collection identifies which persisted collection a change came from.
type Collection string

// Watched collections.
const (
	CollectionTasks         Collection = "tasks"
	CollectionNotifications Collection = "notifications"
)

// Event is a collection change routed to the subscribers of one user.
type Event struct {
	Collection Collection
	Type       store.ChangeType
	DocumentID primitive.ObjectID
}

// subscriberBuffer is the per-subscriber event channel capacity. A
// subscriber that falls this far behind starts losing events rather than
// blocking delivery to everyone else.
const subscriberBuffer = 16

// Subscriber receives the events relevant to a single uid. It must be
// closed when the owning connection goes away; afterwards no further events
// are delivered.
type Subscriber struct {
	uid    string
	events chan Event
	broker *Broker
	once   sync.Once
}

// Events returns the channel on which routed events arrive. The channel is
// closed by Close.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Close detaches the subscriber from the broker and closes its channel.
// Safe to call more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.broker.unsubscribe(s)
	})
}

// Broker consumes the task and notification change feeds once for the whole
// process and fans each event out to the subscribers of the affected user.
//
// Ownership of an event is re-derived from the document for inserts and
// updates, feeding an in-process index of the last known owner per task.
// Delete events carry no document body, so the index is consulted instead;
// when the owner was never observed the broker degrades to broadcasting the
// event to every subscriber.
type Broker struct {
	tasks         store.TaskStore
	notifications store.NotificationStore
	logger        *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}

	ownerMu sync.RWMutex
	owners  map[primitive.ObjectID]string
}

// NewBroker creates a Broker over the given stores.
func NewBroker(tasks store.TaskStore, notifications store.NotificationStore, logger *slog.Logger) *Broker {
	return &Broker{
		tasks:         tasks,
		notifications: notifications,
		logger:        logger.With("component", "broker"),
		subscribers:   make(map[string]map[*Subscriber]struct{}),
		owners:        make(map[primitive.ObjectID]string),
	}
}

// Subscribe registers a new subscriber for the given uid.
func (b *Broker) Subscribe(uid string) *Subscriber {
	sub := &Subscriber{
		uid:    uid,
		events: make(chan Event, subscriberBuffer),
		broker: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[uid] == nil {
		b.subscribers[uid] = make(map[*Subscriber]struct{})
	}
	b.subscribers[uid][sub] = struct{}{}

	b.logger.Debug("subscriber added", "uid", uid, "count", len(b.subscribers[uid]))
	return sub
}

// unsubscribe removes the subscriber and closes its channel. Dispatch sends
// happen under the read lock, so closing under the write lock cannot race a
// send.
func (b *Broker) unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.uid]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.subscribers, sub.uid)
	}
	close(sub.events)

	b.logger.Debug("subscriber removed", "uid", sub.uid)
}

// Run opens both collection change feeds and routes events until ctx is
// done or a feed fails.
func (b *Broker) Run(ctx context.Context) error {
	taskStream, err := b.tasks.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch tasks: %w", err)
	}
	defer func() { _ = taskStream.Close(context.Background()) }()

	notificationStream, err := b.notifications.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch notifications: %w", err)
	}
	defer func() { _ = notificationStream.Close(context.Background()) }()

	b.logger.Info("broker started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.consume(ctx, CollectionTasks, taskStream) })
	g.Go(func() error { return b.consume(ctx, CollectionNotifications, notificationStream) })
	return g.Wait()
}

// consume drains one change stream, routing each event.
func (b *Broker) consume(ctx context.Context, collection Collection, stream store.ChangeStream) error {
	for {
		change, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, store.ErrChangeStreamClosed) {
				return nil
			}
			return fmt.Errorf("%s change feed failed: %w", collection, err)
		}
		b.route(ctx, collection, change)
	}
}

// route resolves the owner of a change and delivers it. Resolution errors
// are logged and the event abandoned; the feed itself keeps going.
func (b *Broker) route(ctx context.Context, collection Collection, change store.Change) {
	event := Event{
		Collection: collection,
		Type:       change.Type,
		DocumentID: change.DocumentID,
	}

	uid, known, err := b.resolveOwner(ctx, collection, change)
	if err != nil {
		b.logger.Error("failed to resolve change owner, dropping event",
			"collection", collection,
			"operation", change.Type,
			"document_id", change.DocumentID.Hex(),
			"error", err)
		return
	}

	if !known {
		// Owner never observed; notify everyone rather than miss the owner.
		b.broadcast(event)
		return
	}
	b.deliver(uid, event)
}

// resolveOwner determines which user an event belongs to. Inserts and
// updates re-fetch the document; task owners are remembered for later
// delete events.
func (b *Broker) resolveOwner(
	ctx context.Context,
	collection Collection,
	change store.Change,
) (string, bool, error) {
	if change.Type == store.ChangeDelete {
		if collection != CollectionTasks {
			return "", false, nil
		}
		b.ownerMu.Lock()
		uid, ok := b.owners[change.DocumentID]
		delete(b.owners, change.DocumentID)
		b.ownerMu.Unlock()
		return uid, ok, nil
	}

	switch collection {
	case CollectionTasks:
		task, err := b.tasks.Get(ctx, change.DocumentID)
		if err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				// Deleted between the event and the fetch; the delete event
				// will follow and resolve through the index.
				return "", false, nil
			}
			return "", false, err
		}
		b.ownerMu.Lock()
		b.owners[change.DocumentID] = task.UID
		b.ownerMu.Unlock()
		return task.UID, true, nil

	case CollectionNotifications:
		notification, err := b.notifications.Get(ctx, change.DocumentID)
		if err != nil {
			if errors.Is(err, store.ErrNotificationNotFound) {
				return "", false, nil
			}
			return "", false, err
		}
		return notification.UID, true, nil
	}

	return "", false, nil
}

// deliver sends the event to every subscriber of uid without blocking.
func (b *Broker) deliver(uid string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers[uid] {
		b.send(sub, event)
	}
}

// broadcast sends the event to every subscriber of every uid.
func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, subs := range b.subscribers {
		for sub := range subs {
			b.send(sub, event)
		}
	}
}

// send delivers one event to one subscriber, dropping it when the
// subscriber's buffer is full so a stalled connection never blocks the feed.
func (b *Broker) send(sub *Subscriber, event Event) {
	select {
	case sub.events <- event:
	default:
		b.logger.Warn("subscriber buffer full, dropping event",
			"uid", sub.uid,
			"collection", event.Collection,
			"operation", event.Type)
	}
}

package realtime

import (
	"context"
	"log/slog"

	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/store"
)

// Emitter pushes a named event with a payload to one connected client.
type Emitter interface {
	Emit(event string, data any) error
}

// Subscription drives the pushes for a single authenticated connection. It
// consumes the broker events routed to its uid, recomputes the affected
// subset of the aggregate query set, and emits the refreshed views. Each
// connection gets its own Subscription; a slow recomputation delays only
// this connection's next push.
type Subscription struct {
	uid     string
	queries service.QueryService
	emitter Emitter
	logger  *slog.Logger
}

// NewSubscription creates a Subscription for the given authenticated uid.
func NewSubscription(
	uid string,
	queries service.QueryService,
	emitter Emitter,
	logger *slog.Logger,
) *Subscription {
	return &Subscription{
		uid:     uid,
		queries: queries,
		emitter: emitter,
		logger:  logger.With("component", "subscription", "uid", uid),
	}
}

// Run consumes routed events until the channel closes or ctx is done.
func (s *Subscription) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.handle(ctx, event)
		}
	}
}

// handle recomputes and pushes the views affected by one event. Query
// failures are logged and the remaining views still pushed.
func (s *Subscription) handle(ctx context.Context, event Event) {
	switch event.Collection {
	case CollectionNotifications:
		switch event.Type {
		case store.ChangeInsert:
			s.pushUnreadCount(ctx)
		case store.ChangeUpdate:
			s.pushUnreadCount(ctx)
			s.pushNotifications(ctx)
		}
	case CollectionTasks:
		s.pushTaskViews(ctx)
	}
}

// Search answers an inbound searchTasks request on this connection.
func (s *Subscription) Search(ctx context.Context, query string) {
	tasks, err := s.queries.SearchOpenTasks(ctx, s.uid, query)
	if err != nil {
		s.logger.Error("failed to search tasks", "error", err)
		return
	}
	s.emit(EventGetSearchTasks, tasks)
}

// pushTaskViews recomputes and pushes every task-derived view.
func (s *Subscription) pushTaskViews(ctx context.Context) {
	if open, err := s.queries.OpenTasks(ctx, s.uid); err != nil {
		s.logger.Error("failed to load open tasks", "error", err)
	} else {
		s.emit(EventGetAllTasks, open)
	}

	if counts, err := s.queries.StatusCounts(ctx, s.uid); err != nil {
		s.logger.Error("failed to load status counts", "error", err)
	} else {
		s.emit(EventEventTasksAmount, counts)
	}

	if today, err := s.queries.TodayTasks(ctx, s.uid); err != nil {
		s.logger.Error("failed to load today's tasks", "error", err)
	} else {
		s.emit(EventTodayTasks, today)
	}

	if amounts, err := s.queries.Amounts(ctx, s.uid); err != nil {
		s.logger.Error("failed to load amounts", "error", err)
	} else {
		s.emit(EventAmounts, amounts)
	}

	if history, err := s.queries.AllTasks(ctx, s.uid); err != nil {
		s.logger.Error("failed to load task history", "error", err)
	} else {
		s.emit(EventAllEventTasks, history)
	}
}

func (s *Subscription) pushUnreadCount(ctx context.Context) {
	count, err := s.queries.UnreadCount(ctx, s.uid)
	if err != nil {
		s.logger.Error("failed to load unread count", "error", err)
		return
	}
	s.emit(EventNotificationsLength, NotificationsLengthPayload{NotiLen: count})
}

func (s *Subscription) pushNotifications(ctx context.Context) {
	notifications, err := s.queries.Notifications(ctx, s.uid)
	if err != nil {
		s.logger.Error("failed to load notifications", "error", err)
		return
	}
	s.emit(EventNotifications, notifications)
}

// emit pushes one event, tolerating a connection that went away mid-push.
func (s *Subscription) emit(event string, data any) {
	if err := s.emitter.Emit(event, data); err != nil {
		s.logger.Debug("failed to emit event", "event", event, "error", err)
	}
}

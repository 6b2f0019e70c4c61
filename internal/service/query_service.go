package service

import (
	"context"
	"fmt"
	"time"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// StatusCounts is the per-status task tally pushed as eventTasksAmount.
type StatusCounts struct {
	Finished   int64 `json:"finishedTasksLength"`
	Unfinished int64 `json:"unfinishedTasksLength"`
	Upcoming   int64 `json:"upcomingTasksLength"`
}

// Amounts is the open/today task tally pushed as amounts.
type Amounts struct {
	AllTasks   int64 `json:"allTasksLength"`
	TodayTasks int64 `json:"todayTasksLength"`
}

// QueryService exposes the fixed bundle of derived views over a user's tasks
// and notifications. The REST surface and the realtime fan-out recompute
// these same views; each is independently derivable from the persisted
// collections for a given uid.
type QueryService interface {
	// OpenTasks returns the user's upcoming and unfinished tasks, newest first.
	OpenTasks(ctx context.Context, uid string) ([]domain.Task, error)

	// SearchOpenTasks returns the user's open tasks whose name matches the
	// query case-insensitively, newest first.
	SearchOpenTasks(ctx context.Context, uid, query string) ([]domain.Task, error)

	// TodayTasks returns the user's open tasks due today (UTC), newest first.
	TodayTasks(ctx context.Context, uid string) ([]domain.Task, error)

	// AllTasks returns the user's full task history regardless of status.
	AllTasks(ctx context.Context, uid string) ([]domain.Task, error)

	// StatusCounts returns the user's task tallies per status.
	StatusCounts(ctx context.Context, uid string) (StatusCounts, error)

	// Amounts returns the user's open and due-today task tallies.
	Amounts(ctx context.Context, uid string) (Amounts, error)

	// UnreadCount returns the number of unread notifications for the user.
	UnreadCount(ctx context.Context, uid string) (int64, error)

	// Notifications returns all of the user's notifications, newest first.
	Notifications(ctx context.Context, uid string) ([]domain.Notification, error)
}

// queryService is the store-backed implementation of QueryService.
type queryService struct {
	tasks         store.TaskStore
	notifications store.NotificationStore
	timeFunc      func() time.Time // Injectable for testing
}

var _ QueryService = (*queryService)(nil)

// NewQueryService creates a QueryService over the given stores.
func NewQueryService(tasks store.TaskStore, notifications store.NotificationStore) QueryService {
	return &queryService{
		tasks:         tasks,
		notifications: notifications,
		timeFunc:      time.Now,
	}
}

func (s *queryService) OpenTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return s.tasks.FindOpen(ctx, uid)
}

func (s *queryService) SearchOpenTasks(ctx context.Context, uid, query string) ([]domain.Task, error) {
	return s.tasks.FindOpenByName(ctx, uid, query)
}

func (s *queryService) TodayTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	from, to := dayBounds(s.timeFunc())
	return s.tasks.FindDueBetween(ctx, uid, from, to)
}

func (s *queryService) AllTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return s.tasks.FindAll(ctx, uid)
}

func (s *queryService) StatusCounts(ctx context.Context, uid string) (StatusCounts, error) {
	var counts StatusCounts
	var err error

	if counts.Finished, err = s.tasks.CountByStatus(ctx, uid, domain.TaskStatusFinished); err != nil {
		return StatusCounts{}, fmt.Errorf("failed to count finished tasks: %w", err)
	}
	if counts.Unfinished, err = s.tasks.CountByStatus(ctx, uid, domain.TaskStatusUnfinished); err != nil {
		return StatusCounts{}, fmt.Errorf("failed to count unfinished tasks: %w", err)
	}
	if counts.Upcoming, err = s.tasks.CountByStatus(ctx, uid, domain.TaskStatusUpcoming); err != nil {
		return StatusCounts{}, fmt.Errorf("failed to count upcoming tasks: %w", err)
	}

	return counts, nil
}

func (s *queryService) Amounts(ctx context.Context, uid string) (Amounts, error) {
	open, err := s.tasks.FindOpen(ctx, uid)
	if err != nil {
		return Amounts{}, fmt.Errorf("failed to load open tasks: %w", err)
	}

	from, to := dayBounds(s.timeFunc())
	today, err := s.tasks.FindDueBetween(ctx, uid, from, to)
	if err != nil {
		return Amounts{}, fmt.Errorf("failed to load today's tasks: %w", err)
	}

	return Amounts{
		AllTasks:   int64(len(open)),
		TodayTasks: int64(len(today)),
	}, nil
}

func (s *queryService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return s.notifications.CountUnread(ctx, uid)
}

func (s *queryService) Notifications(ctx context.Context, uid string) ([]domain.Notification, error) {
	return s.notifications.FindByUID(ctx, uid)
}

// dayBounds returns the [midnight, midnight+24h) UTC window containing now.
func dayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

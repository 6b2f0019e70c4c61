package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// Notifier builds and persists the notifications produced by the sweep.
// It performs one insert per call and carries no idempotency state of its
// own; the sweeper gates calls on the task transition actually happening.
type Notifier struct {
	notifications store.NotificationStore
	timeFunc      func() time.Time // Injectable for testing
	logger        *slog.Logger
}

// NewNotifier creates a Notifier persisting through the given store.
func NewNotifier(notifications store.NotificationStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		timeFunc:      time.Now,
		logger:        logger.With("component", "notifier"),
	}
}

// TaskMissed persists a notification telling the owner the task's due
// instant passed without the task being finished.
func (n *Notifier) TaskMissed(ctx context.Context, task *domain.Task) error {
	var due string
	if task.Due != nil {
		due = task.Due.UTC().Format(time.RFC1123)
	}

	notification := domain.NewNotification(
		task.UID,
		fmt.Sprintf("You've missed the task %q to finish on time.", task.Name),
		fmt.Sprintf(
			"The due date and time for the task %q was %s. But you are late to finish the task on time.",
			task.Name, due,
		),
		n.timeFunc(),
	)

	if err := n.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist missed notification: %w", err)
	}

	n.logger.Debug("missed notification emitted",
		"task_id", task.ID.Hex(),
		"uid", task.UID)
	return nil
}

// TaskReminder persists a notification telling the owner how much time is
// left before the task's due instant.
func (n *Notifier) TaskReminder(ctx context.Context, task *domain.Task) error {
	var window string
	if task.Due != nil && task.Reminder != nil {
		window = RemainingWindow(*task.Due, *task.Reminder)
	}

	notification := domain.NewNotification(
		task.UID,
		fmt.Sprintf("⚠️Reminder: You have %s to finish the task %q.", window, task.Name),
		fmt.Sprintf("The task %q has only %s to finish on time.", task.Name, window),
		n.timeFunc(),
	)

	if err := n.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist reminder notification: %w", err)
	}

	n.logger.Debug("reminder notification emitted",
		"task_id", task.ID.Hex(),
		"uid", task.UID)
	return nil
}

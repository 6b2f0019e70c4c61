package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// TaskService handles the explicit-user-action side of the task lifecycle.
// The sweep path mutates status and the reminder flag on its own; everything
// else goes through here, scoped to the acting user.
type TaskService interface {
	// CreateTask persists a new task in its initial state for the owner.
	CreateTask(ctx context.Context, task *domain.Task) error

	// UpdateTask applies the patch to the task owned by uid.
	UpdateTask(ctx context.Context, id primitive.ObjectID, uid string, patch store.TaskPatch) error

	// CompleteTask marks the task owned by uid as finished.
	CompleteTask(ctx context.Context, id primitive.ObjectID, uid string) error

	// DeleteTask removes the task owned by uid.
	DeleteTask(ctx context.Context, id primitive.ObjectID, uid string) error
}

type taskService struct {
	tasks    store.TaskStore
	timeFunc func() time.Time
	logger   *slog.Logger
}

var _ TaskService = (*taskService)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) TaskService {
	return &taskService{
		tasks:    tasks,
		timeFunc: time.Now,
		logger:   logger.With("component", "task_service"),
	}
}

func (s *taskService) CreateTask(ctx context.Context, task *domain.Task) error {
	// A new task always starts upcoming with the reminder unfired, no matter
	// what the caller set.
	task.Status = domain.TaskStatusUpcoming
	task.ReminderFired = false
	task.CreatedAt = s.timeFunc().UTC()
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}

	if err := task.Validate(); err != nil {
		return err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID.Hex(), "uid", task.UID)
	return nil
}

func (s *taskService) UpdateTask(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
	patch store.TaskPatch,
) error {
	if patch.Name == "" {
		return domain.ErrEmptyTaskName
	}
	if patch.Reminder != nil {
		if patch.Due == nil {
			return domain.ErrReminderNoDue
		}
		if patch.Reminder.After(*patch.Due) {
			return domain.ErrReminderAfterDue
		}
	}
	if patch.Priority != "" && !patch.Priority.IsValid() {
		return domain.ErrInvalidPriority
	}

	if err := s.tasks.Update(ctx, id, uid, patch); err != nil {
		return err
	}

	s.logger.Info("task updated", "task_id", id.Hex(), "uid", uid)
	return nil
}

func (s *taskService) CompleteTask(ctx context.Context, id primitive.ObjectID, uid string) error {
	if err := s.tasks.Complete(ctx, id, uid); err != nil {
		return err
	}

	s.logger.Info("task completed", "task_id", id.Hex(), "uid", uid)
	return nil
}

func (s *taskService) DeleteTask(ctx context.Context, id primitive.ObjectID, uid string) error {
	if err := s.tasks.Delete(ctx, id, uid); err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", id.Hex(), "uid", uid)
	return nil
}

package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task validation errors.
var (
	ErrEmptyTaskUID     = errors.New("task owner uid cannot be empty")
	ErrEmptyTaskName    = errors.New("task name cannot be empty")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidPriority  = errors.New("invalid task priority")
	ErrReminderNoDue    = errors.New("reminder requires a due date")
	ErrReminderAfterDue = errors.New("reminder cannot be after the due date")
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values. A task starts as upcoming; the sweeper moves
// it to unfinished once its due instant passes, and an explicit user action
// moves it to finished. Both unfinished and finished are terminal for the
// sweeper.
const (
	TaskStatusUpcoming   TaskStatus = "upcoming"
	TaskStatusUnfinished TaskStatus = "unfinished"
	TaskStatusFinished   TaskStatus = "finished"
)

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUpcoming, TaskStatusUnfinished, TaskStatusFinished:
		return true
	}
	return false
}

// TaskPriority represents the user-assigned priority of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether p is one of the known task priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task represents a single tracked task owned by one user.
//
// Due and Reminder are optional instants. A task without a due instant is
// never swept into the unfinished state. ReminderFired is monotonic: once the
// sweeper sets it, it is never reset while the task remains upcoming.
type Task struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"            json:"id"`
	UID           string             `bson:"uid"                      json:"uid"`
	Name          string             `bson:"name"                     json:"name"`
	Description   string             `bson:"description,omitempty"    json:"description,omitempty"`
	Due           *time.Time         `bson:"dueDateTime,omitempty"    json:"dueDateTime,omitempty"`
	Reminder      *time.Time         `bson:"reminderDateTime,omitempty" json:"reminderDateTime,omitempty"`
	Status        TaskStatus         `bson:"status"                   json:"status"`
	ReminderFired bool               `bson:"reminderFired"            json:"reminderFired"`
	Priority      TaskPriority       `bson:"priority"                 json:"priority"`
	CreatedAt     time.Time          `bson:"createdAt"                json:"createdAt"`
}

// NewTask creates a task in its initial state for the given owner.
// Returns an error if validation fails.
func NewTask(uid, name string) *Task {
	return &Task{
		UID:       uid,
		Name:      name,
		Status:    TaskStatusUpcoming,
		Priority:  TaskPriorityMedium,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UID == "" {
		return ErrEmptyTaskUID
	}
	if t.Name == "" {
		return ErrEmptyTaskName
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.Reminder != nil {
		if t.Due == nil {
			return ErrReminderNoDue
		}
		if t.Reminder.After(*t.Due) {
			return ErrReminderAfterDue
		}
	}
	return nil
}

// IsOpen reports whether the task still counts toward the user's open lists
// (upcoming or unfinished).
func (t *Task) IsOpen() bool {
	return t.Status == TaskStatusUpcoming || t.Status == TaskStatusUnfinished
}

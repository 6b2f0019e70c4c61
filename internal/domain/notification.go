package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification validation errors.
var (
	ErrEmptyNotificationUID   = errors.New("notification owner uid cannot be empty")
	ErrEmptyNotificationTitle = errors.New("notification title cannot be empty")
)

// Notification is a persisted message produced for a single user, either
// when a task's due instant passes or when its reminder fires. Notifications
// are created by the sweep path only; the sole mutation afterwards is the
// read flag being set by explicit user action.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID         string             `bson:"uid"           json:"uid"`
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	Read        bool               `bson:"readStatus"    json:"readStatus"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
}

// NewNotification creates an unread notification for the given owner,
// stamped with the provided creation time.
func NewNotification(uid, title, description string, createdAt time.Time) *Notification {
	return &Notification{
		UID:         uid,
		Title:       title,
		Description: description,
		Read:        false,
		CreatedAt:   createdAt.UTC(),
	}
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.UID == "" {
		return ErrEmptyNotificationUID
	}
	if n.Title == "" {
		return ErrEmptyNotificationTitle
	}
	return nil
}

// Package sweep implements the periodic evaluation of open tasks against
// wall-clock time: transitioning tasks whose due instant has passed and
// firing reminders, emitting a notification for each.
package sweep

import (
	"fmt"
	"time"
)

// IsPastDue reports whether a task's due instant has passed. An absent due
// instant is never past due.
func IsPastDue(due *time.Time, now time.Time) bool {
	return due != nil && now.After(*due)
}

// IsPastReminder reports whether a task's reminder instant has passed. An
// absent reminder instant is never past.
func IsPastReminder(reminder *time.Time, now time.Time) bool {
	return reminder != nil && now.After(*reminder)
}

// RemainingWindow formats the distance between the due and reminder instants
// as "H:MM hours" when at least one whole hour, otherwise "M minutes". The
// result is embedded in reminder notification text.
func RemainingWindow(due, reminder time.Time) string {
	minutes := int(due.Sub(reminder).Abs().Minutes())

	hours := minutes / 60
	minutes = minutes % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d hours", hours, minutes)
	}
	return fmt.Sprintf("%d minutes", minutes)
}

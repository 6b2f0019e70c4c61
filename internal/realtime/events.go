package realtime

import "encoding/json"

// Event names of the realtime contract. A connected client listens for the
// outbound names and may send searchTasks with a string query.
const (
	// Inbound
	EventSearchTasks = "searchTasks"

	// Outbound
	EventGetSearchTasks      = "getSearchTasks"
	EventNotificationsLength = "notificationsLength"
	EventNotifications       = "notifications"
	EventGetAllTasks         = "getAllTasks"
	EventEventTasksAmount    = "eventTasksAmount"
	EventTodayTasks          = "todayTasks"
	EventAmounts             = "amounts"
	EventAllEventTasks       = "allEventTasks"
)

// Frame is the JSON envelope exchanged over the websocket in both
// directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NotificationsLengthPayload is the payload of the notificationsLength event.
type NotificationsLengthPayload struct {
	NotiLen int64 `json:"notiLen"`
}

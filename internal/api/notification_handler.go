package api

import (
	"log/slog"
	"net/http"

	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/service"
)

// NotificationHandler handles notification-related HTTP requests.
type NotificationHandler struct {
	notificationService service.NotificationService
	queryService        service.QueryService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	notificationService service.NotificationService,
	queryService service.QueryService,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		queryService:        queryService,
		logger:              logger.With("component", "notification_handler"),
	}
}

// List handles GET /api/users/{uid}/notifications requests.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	notifications, err := h.queryService.Notifications(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/users/{uid}/notifications/unread-count
// requests.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	count, err := h.queryService.UnreadCount(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// MarkRead handles PATCH /api/notifications/{id}/read requests.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return
	}

	id, err := getPathObjectID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, uid); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "read"})
}

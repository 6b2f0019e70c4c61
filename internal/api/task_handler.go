package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/store"
)

// CreateTaskRequest defines the payload for the task creation endpoint. The
// uid field is optional; when present it must match the authenticated
// identity.
type CreateTaskRequest struct {
	UID         string     `json:"uid"         validate:"omitempty"`
	Name        string     `json:"name"        validate:"required,max=500"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Due         *time.Time `json:"dueDateTime"`
	Reminder    *time.Time `json:"reminderDateTime"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest defines the payload for the task update endpoint.
type UpdateTaskRequest struct {
	Name        string     `json:"name"        validate:"required,max=500"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Due         *time.Time `json:"dueDateTime"`
	Reminder    *time.Time `json:"reminderDateTime"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// CountResponse carries a single numeric count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService  service.TaskService
	queryService service.QueryService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	taskService service.TaskService,
	queryService service.QueryService,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		queryService: queryService,
		validator:    validator.New(),
		logger:       logger.With("component", "task_handler"),
	}
}

// Create handles POST /api/tasks requests. The task is created for the
// authenticated identity; the body carries no uid.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.UID != "" && req.UID != uid {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized access")
		return
	}

	task := &domain.Task{
		UID:         uid,
		Name:        req.Name,
		Description: req.Description,
		Due:         req.Due,
		Reminder:    req.Reminder,
		Priority:    domain.TaskPriority(req.Priority),
	}

	if err := h.taskService.CreateTask(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return
	}

	id, err := getPathObjectID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := store.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Due:         req.Due,
		Reminder:    req.Reminder,
		Priority:    domain.TaskPriority(req.Priority),
	}
	if err := h.taskService.UpdateTask(r.Context(), id, uid, patch); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

// Complete handles PATCH /api/tasks/{id}/complete requests.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return
	}

	id, err := getPathObjectID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.CompleteTask(r.Context(), id, uid); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "finished"})
}

// Delete handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAuthenticatedUID(w, r)
	if !ok {
		return
	}

	id, err := getPathObjectID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id, uid); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListOpen handles GET /api/users/{uid}/tasks requests. With a q parameter
// the result is filtered to open tasks whose name matches it.
func (h *TaskHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var (
		tasks []domain.Task
		err   error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		tasks, err = h.queryService.SearchOpenTasks(r.Context(), uid, query)
	} else {
		tasks, err = h.queryService.OpenTasks(r.Context(), uid)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Search handles GET /api/users/{uid}/tasks/search requests.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	tasks, err := h.queryService.SearchOpenTasks(r.Context(), uid, r.URL.Query().Get("q"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListToday handles GET /api/users/{uid}/tasks/today requests.
func (h *TaskHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	tasks, err := h.queryService.TodayTasks(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListAll handles GET /api/users/{uid}/tasks/all requests, returning the
// user's full task history regardless of status.
func (h *TaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	tasks, err := h.queryService.AllTasks(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Counts handles GET /api/users/{uid}/tasks/counts requests.
func (h *TaskHandler) Counts(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	counts, err := h.queryService.StatusCounts(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}

// Amounts handles GET /api/users/{uid}/tasks/amounts requests.
func (h *TaskHandler) Amounts(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	amounts, err := h.queryService.Amounts(r.Context(), uid)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, amounts)
}

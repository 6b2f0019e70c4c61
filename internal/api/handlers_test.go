package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkit/checkit-server/internal/api/middleware"
	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/service/auth"
	"github.com/checkit/checkit-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeJWTService accepts exactly one token string.
type fakeJWTService struct {
	validToken string
	uid        string
}

var _ auth.JWTService = (*fakeJWTService)(nil)

func (f *fakeJWTService) GenerateToken(
	ctx context.Context,
	uid, email string,
) (string, time.Time, error) {
	return f.validToken, time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC), nil
}

func (f *fakeJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token != f.validToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UID: f.uid, Subject: f.uid}, nil
}

// fakeTaskService implements service.TaskService with overridable hooks.
type fakeTaskService struct {
	createFn   func(ctx context.Context, task *domain.Task) error
	updateFn   func(ctx context.Context, id primitive.ObjectID, uid string, patch store.TaskPatch) error
	completeFn func(ctx context.Context, id primitive.ObjectID, uid string) error
	deleteFn   func(ctx context.Context, id primitive.ObjectID, uid string) error
}

var _ service.TaskService = (*fakeTaskService)(nil)

func (f *fakeTaskService) CreateTask(ctx context.Context, task *domain.Task) error {
	if f.createFn != nil {
		return f.createFn(ctx, task)
	}
	return nil
}

func (f *fakeTaskService) UpdateTask(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
	patch store.TaskPatch,
) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, uid, patch)
	}
	return nil
}

func (f *fakeTaskService) CompleteTask(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
) error {
	if f.completeFn != nil {
		return f.completeFn(ctx, id, uid)
	}
	return nil
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, id primitive.ObjectID, uid string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, uid)
	}
	return nil
}

// fakeQueryService returns canned view data.
type fakeQueryService struct {
	openTasks []domain.Task
	counts    service.StatusCounts
	amounts   service.Amounts
	unread    int64
}

var _ service.QueryService = (*fakeQueryService)(nil)

func (f *fakeQueryService) OpenTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return f.openTasks, nil
}

func (f *fakeQueryService) SearchOpenTasks(
	ctx context.Context,
	uid, query string,
) ([]domain.Task, error) {
	return f.openTasks, nil
}

func (f *fakeQueryService) TodayTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeQueryService) AllTasks(ctx context.Context, uid string) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeQueryService) StatusCounts(
	ctx context.Context,
	uid string,
) (service.StatusCounts, error) {
	return f.counts, nil
}

func (f *fakeQueryService) Amounts(ctx context.Context, uid string) (service.Amounts, error) {
	return f.amounts, nil
}

func (f *fakeQueryService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return f.unread, nil
}

func (f *fakeQueryService) Notifications(
	ctx context.Context,
	uid string,
) ([]domain.Notification, error) {
	return nil, nil
}

// fakeUserService implements service.UserService with overridable hooks.
type fakeUserService struct {
	registerFn func(ctx context.Context, user *domain.User) error
	getFn      func(ctx context.Context, uid string) (*domain.User, error)
	existsFn   func(ctx context.Context, uid string) (bool, error)
	updateFn   func(ctx context.Context, uid string, patch store.ProfilePatch) error
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) Register(ctx context.Context, user *domain.User) error {
	if f.registerFn != nil {
		return f.registerFn(ctx, user)
	}
	return nil
}

func (f *fakeUserService) GetProfile(ctx context.Context, uid string) (*domain.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, uid)
	}
	return &domain.User{UID: uid}, nil
}

func (f *fakeUserService) Exists(ctx context.Context, uid string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, uid)
	}
	return false, nil
}

func (f *fakeUserService) UpdateProfile(
	ctx context.Context,
	uid string,
	patch store.ProfilePatch,
) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, uid, patch)
	}
	return nil
}

// fakeNotificationService implements service.NotificationService.
type fakeNotificationService struct {
	markReadFn func(ctx context.Context, id primitive.ObjectID, uid string) error
}

var _ service.NotificationService = (*fakeNotificationService)(nil)

func (f *fakeNotificationService) MarkRead(
	ctx context.Context,
	id primitive.ObjectID,
	uid string,
) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, id, uid)
	}
	return nil
}

// testDeps bundles the fakes behind a routed test server.
type testDeps struct {
	jwt           *fakeJWTService
	tasks         *fakeTaskService
	queries       *fakeQueryService
	users         *fakeUserService
	notifications *fakeNotificationService
}

func newTestDeps() *testDeps {
	return &testDeps{
		jwt:           &fakeJWTService{validToken: "good-token", uid: "user-1"},
		tasks:         &fakeTaskService{},
		queries:       &fakeQueryService{},
		users:         &fakeUserService{},
		notifications: &fakeNotificationService{},
	}
}

// newTestRouter mirrors the production route layout over the fakes.
func newTestRouter(deps *testDeps) http.Handler {
	logger := discardLogger()
	authHandler := NewAuthHandler(deps.jwt, logger)
	userHandler := NewUserHandler(deps.users, logger)
	taskHandler := NewTaskHandler(deps.tasks, deps.queries, logger)
	notificationHandler := NewNotificationHandler(deps.notifications, deps.queries, logger)
	authMiddleware := middleware.NewAuthMiddleware(deps.jwt)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", authHandler.IssueToken)
		r.Post("/users", userHandler.Register)
		r.Get("/users/{uid}/exists", userHandler.Exists)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/{uid}", userHandler.GetProfile)
			r.Put("/users/{uid}", userHandler.UpdateProfile)

			r.Post("/tasks", taskHandler.Create)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}/complete", taskHandler.Complete)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			r.Get("/users/{uid}/tasks", taskHandler.ListOpen)
			r.Get("/users/{uid}/tasks/search", taskHandler.Search)
			r.Get("/users/{uid}/tasks/today", taskHandler.ListToday)
			r.Get("/users/{uid}/tasks/all", taskHandler.ListAll)
			r.Get("/users/{uid}/tasks/counts", taskHandler.Counts)
			r.Get("/users/{uid}/tasks/amounts", taskHandler.Amounts)

			r.Get("/users/{uid}/notifications", notificationHandler.List)
			r.Get("/users/{uid}/notifications/unread-count", notificationHandler.UnreadCount)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
		})
	})
	return r
}

func doJSON(
	t *testing.T,
	router http.Handler,
	method, target, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	r := httptest.NewRequest(method, target, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestIssueToken(t *testing.T) {
	t.Parallel()

	t.Run("returns a token for a valid request", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPost, "/api/auth/token", "", TokenRequest{
			UID:   "user-1",
			Email: "user@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "user-1", resp.UID)
		assert.Equal(t, "good-token", resp.Token)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())
		w := doJSON(t, router, http.MethodPost, "/api/auth/token", "", TokenRequest{UID: "user-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())
		r := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewBufferString("{"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates the task for the authenticated identity", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		var created *domain.Task
		deps.tasks.createFn = func(ctx context.Context, task *domain.Task) error {
			created = task
			return nil
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPost, "/api/tasks", "good-token", CreateTaskRequest{
			Name:     "Pay rent",
			Priority: "high",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		require.NotNil(t, created)
		assert.Equal(t, "user-1", created.UID, "uid comes from the token, never the body")
		assert.Equal(t, "Pay rent", created.Name)
		assert.Equal(t, domain.TaskPriorityHigh, created.Priority)
	})

	t.Run("rejects unauthenticated request", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())
		w := doJSON(t, router, http.MethodPost, "/api/tasks", "", CreateTaskRequest{Name: "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects body uid that does not match the token", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())
		w := doJSON(t, router, http.MethodPost, "/api/tasks", "good-token", CreateTaskRequest{
			UID:  "user-2",
			Name: "Pay rent",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("maps validation failure to 400", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.tasks.createFn = func(ctx context.Context, task *domain.Task) error {
			return domain.ErrReminderNoDue
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPost, "/api/tasks", "good-token", CreateTaskRequest{
			Name: "Pay rent",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskMutationEndpoints(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	t.Run("complete passes id and authenticated uid", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		var gotID primitive.ObjectID
		var gotUID string
		deps.tasks.completeFn = func(ctx context.Context, id primitive.ObjectID, uid string) error {
			gotID, gotUID = id, uid
			return nil
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPatch, "/api/tasks/"+id.Hex()+"/complete", "good-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, gotID)
		assert.Equal(t, "user-1", gotUID)
	})

	t.Run("delete of another user's task maps to 404", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.tasks.deleteFn = func(ctx context.Context, id primitive.ObjectID, uid string) error {
			return store.ErrTaskNotFound
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodDelete, "/api/tasks/"+id.Hex(), "good-token", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed task id maps to 400", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())
		w := doJSON(t, router, http.MethodDelete, "/api/tasks/not-an-id", "good-token", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOwnerScopedViews(t *testing.T) {
	t.Parallel()

	t.Run("owner reads their open tasks", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.queries.openTasks = []domain.Task{{UID: "user-1", Name: "Pay rent"}}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodGet, "/api/users/user-1/tasks", "good-token", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, "Pay rent", tasks[0].Name)
	})

	t.Run("another user's views are refused", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(newTestDeps())

		for _, target := range []string{
			"/api/users/user-2/tasks",
			"/api/users/user-2/tasks/counts",
			"/api/users/user-2/notifications",
			"/api/users/user-2",
		} {
			w := doJSON(t, router, http.MethodGet, target, "good-token", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		}
	})

	t.Run("status counts use the contract field names", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.queries.counts = service.StatusCounts{Finished: 1, Unfinished: 2, Upcoming: 3}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodGet, "/api/users/user-1/tasks/counts", "good-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(
			t,
			`{"finishedTasksLength":1,"unfinishedTasksLength":2,"upcomingTasksLength":3}`,
			w.Body.String(),
		)
	})
}

func TestUserEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("register is public", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		var registered *domain.User
		deps.users.registerFn = func(ctx context.Context, user *domain.User) error {
			registered = user
			return nil
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterUserRequest{
			UID:   "user-1",
			Email: "user@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, registered)
		assert.Equal(t, "user-1", registered.UID)
	})

	t.Run("duplicate registration maps to 409", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.users.registerFn = func(ctx context.Context, user *domain.User) error {
			return store.ErrUserExists
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterUserRequest{
			UID:   "user-1",
			Email: "user@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("exists is public", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.users.existsFn = func(ctx context.Context, uid string) (bool, error) {
			return true, nil
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodGet, "/api/users/user-1/exists", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"exists":true}`, w.Body.String())
	})
}

func TestMarkNotificationRead(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	t.Run("marks owned notification read", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		var gotUID string
		deps.notifications.markReadFn = func(ctx context.Context, gotID primitive.ObjectID, uid string) error {
			assert.Equal(t, id, gotID)
			gotUID = uid
			return nil
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "good-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", gotUID)
	})

	t.Run("missing notification maps to 404", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.notifications.markReadFn = func(ctx context.Context, gotID primitive.ObjectID, uid string) error {
			return store.ErrNotificationNotFound
		}
		router := newTestRouter(deps)

		w := doJSON(t, router, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "good-token", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

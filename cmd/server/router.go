package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/checkit/checkit-server/internal/api"
	apiMiddleware "github.com/checkit/checkit-server/internal/api/middleware"
	"github.com/checkit/checkit-server/internal/realtime"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.jwtService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.queryService, app.logger)
	notificationHandler := api.NewNotificationHandler(
		app.notificationService,
		app.queryService,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	wsHandler := realtime.NewHandler(app.jwtService, app.broker, app.queryService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/token", authHandler.IssueToken)
		r.Post("/users", userHandler.Register)
		r.Get("/users/{uid}/exists", userHandler.Exists)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// User profile endpoints
			r.Get("/users/{uid}", userHandler.GetProfile)
			r.Put("/users/{uid}", userHandler.UpdateProfile)

			// Task mutation endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}/complete", taskHandler.Complete)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			// Task view endpoints
			r.Get("/users/{uid}/tasks", taskHandler.ListOpen)
			r.Get("/users/{uid}/tasks/search", taskHandler.Search)
			r.Get("/users/{uid}/tasks/today", taskHandler.ListToday)
			r.Get("/users/{uid}/tasks/all", taskHandler.ListAll)
			r.Get("/users/{uid}/tasks/counts", taskHandler.Counts)
			r.Get("/users/{uid}/tasks/amounts", taskHandler.Amounts)

			// Notification endpoints
			r.Get("/users/{uid}/notifications", notificationHandler.List)
			r.Get("/users/{uid}/notifications/unread-count", notificationHandler.UnreadCount)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
		})
	})

	// Websocket endpoint; the handler gates on the token itself so the
	// upgrade can be refused before any event is sent.
	r.Get("/ws", wsHandler.ServeWS)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

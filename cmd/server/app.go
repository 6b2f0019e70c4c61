package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/checkit/checkit-server/internal/config"
	"github.com/checkit/checkit-server/internal/platform/mongodb"
	"github.com/checkit/checkit-server/internal/realtime"
	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/service/auth"
	"github.com/checkit/checkit-server/internal/store"
	"github.com/checkit/checkit-server/internal/sweep"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	client *mongo.Client

	// Stores (using interfaces for proper abstraction)
	taskStore         store.TaskStore
	notificationStore store.NotificationStore
	userStore         store.UserStore

	// Service interfaces
	jwtService          auth.JWTService
	taskService         service.TaskService
	queryService        service.QueryService
	notificationService service.NotificationService
	userService         service.UserService

	// Background machinery
	sweeper *sweep.Sweeper
	broker  *realtime.Broker
}

// newApplication creates a new application instance with all dependencies
// initialized, including the database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.client, err = mongodb.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := app.client.Database(cfg.Database.Name)
	logger.Info("Database connection established", "database", cfg.Database.Name)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.taskStore = mongodb.NewMongoTaskStore(db, logger)
	app.notificationStore = mongodb.NewMongoNotificationStore(db, logger)
	app.userStore = mongodb.NewMongoUserStore(db, logger)

	// Initialize services
	app.taskService = service.NewTaskService(app.taskStore, logger)
	app.queryService = service.NewQueryService(app.taskStore, app.notificationStore)
	app.notificationService = service.NewNotificationService(app.notificationStore, logger)
	app.userService = service.NewUserService(app.userStore, logger)

	// Initialize the sweep loop
	notifier := sweep.NewNotifier(app.notificationStore, logger)
	app.sweeper = sweep.NewSweeper(app.taskStore, notifier, sweep.SweeperConfig{
		Interval:    time.Duration(cfg.Sweep.IntervalSeconds) * time.Second,
		WorkerCount: cfg.Sweep.WorkerCount,
	}, logger)

	// Initialize the change-feed broker
	app.broker = realtime.NewBroker(app.taskStore, app.notificationStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background machinery and the HTTP server, handling
// lifecycle and cleanup. It blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go app.sweeper.Run(runCtx)

	go func() {
		if err := app.broker.Run(runCtx); err != nil && runCtx.Err() == nil {
			app.logger.Error("Change-feed broker stopped", "error", err)
		}
	}()

	router := app.setupRouter()

	if err := app.startHTTPServer(runCtx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.client != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.client.Disconnect(disconnectCtx); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

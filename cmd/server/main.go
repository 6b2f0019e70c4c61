// Package main implements the entry point for the Check It server,
// which tracks users' tasks, sweeps them against their due and reminder
// instants, and pushes live task views over websockets.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/checkit/checkit-server/internal/config"
	"github.com/checkit/checkit-server/internal/platform/logger"
)

// main is the entry point for the checkit server.
// It initializes configuration, sets up logging, establishes the database
// connection, injects dependencies, and starts the HTTP server alongside
// the sweep loop and the change-feed broker.
func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		app.logger.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up application components.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.Name,
		"sweep_interval_seconds", cfg.Sweep.IntervalSeconds)

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return app, nil
}

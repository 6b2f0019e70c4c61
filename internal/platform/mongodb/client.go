// Package mongodb provides MongoDB-backed implementations of the store
// interfaces, including the collection change feeds consumed by the realtime
// layer.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/checkit/checkit-server/internal/config"
)

// Collection names within the application database.
const (
	tasksCollection         = "Tasks"
	notificationsCollection = "Notifications"
	usersCollection         = "Users"
)

// Connect establishes and verifies a connection to the configured MongoDB
// deployment. The caller owns the returned client and must disconnect it on
// shutdown.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping to confirm a successful connection before handing the client out.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

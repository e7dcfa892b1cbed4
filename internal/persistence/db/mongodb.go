package db

import (
	"context"
	"fmt"
	"time"

	"github.com/hilthontt/huddle/internal/infrastructure/configs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const RoomAuditLogsCollection = "room_audit_logs"

const defaultConnectTimeout = 20 * time.Second

// Mongo is the connection to the audit store. Room and message state never
// touches it; only lifecycle history lives here.
type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
}

func Connect(ctx context.Context, cfg configs.AuditConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("audit store URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("audit store database is required")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the audit store: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping the audit store: %w", err)
	}

	return &Mongo{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func (m *Mongo) Database() *mongo.Database {
	return m.database
}

func (m *Mongo) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := m.client.Disconnect(closeCtx); err != nil {
		return fmt.Errorf("failed to disconnect from the audit store: %w", err)
	}

	return nil
}

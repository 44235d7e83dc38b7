// Package database provides the Postgres and Redis connections shared
// by every worker: Postgres holds the profile, match and conversation
// read model, Redis the score and deck caches.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dealflow-workers/internal/common/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection using the configured limits.
// Connection health is verified separately via Ping so startup retry
// logic can distinguish a bad DSN from a broker that is still coming
// up.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

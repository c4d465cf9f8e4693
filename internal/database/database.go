// Package database manages the Postgres connection pool and schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/pkg/retry"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = time.Minute
)

// DB wraps the connection pool
type DB struct {
	*sql.DB
}

// Open configures a pool for databaseURL without connecting
func Open(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	return &DB{DB: db}, nil
}

// New opens a pool and verifies the connection
func New(databaseURL string) (*DB, error) {
	db, err := Open(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Connect opens a pool and retries the first ping with backoff, for
// containers that start alongside their database.
func Connect(ctx context.Context, databaseURL string, cfg retry.Config, log logger.Logger) (*DB, error) {
	db, err := Open(databaseURL)
	if err != nil {
		return nil, err
	}

	err = retry.DoWithLog(ctx, cfg, "database", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, func(attempt int, err error, next time.Duration) {
		log.Warn("database not ready", "attempt", attempt, "retry_in", next.String(), "error", err.Error())
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database with a short timeout
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetStats returns connection pool statistics
func (db *DB) GetStats() sql.DBStats {
	return db.Stats()
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureDatabaseExists connects to the maintenance database of the server
// in dsn and creates the target database when it is missing.
func EnsureDatabaseExists(ctx context.Context, dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}
	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return fmt.Errorf("connection string has no database name")
	}

	admin := *u
	admin.Path = "/postgres"

	slog.Info("checking database", "database", database)

	conn, err := pgx.Connect(ctx, admin.String())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(context.Background())

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := conn.QueryRow(ctx, query, database).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot run inside a transaction
	createQuery := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{database}.Sanitize())
	if _, err := conn.Exec(ctx, createQuery); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	slog.Info("database created", "database", database)
	return nil
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connection pool established",
		"host", config.ConnConfig.Host,
		"database", config.ConnConfig.Database,
	)
	return pool, nil
}

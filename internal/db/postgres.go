package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.starlight/internal/config"
)

// InitPostgres initializes and returns a PostgreSQL connection pool
func InitPostgres() (*pgxpool.Pool, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := config.GetEnvOrDefault("POSTGRES_HOST", "localhost")
		port := config.GetEnvOrDefault("POSTGRES_PORT", "5432")
		user := config.GetEnvOrDefault("POSTGRES_USER", "starlight")
		password := config.GetEnvOrDefault("POSTGRES_PASSWORD", "")
		dbname := config.GetEnvOrDefault("POSTGRES_DB", "starlight")
		sslmode := config.GetEnvOrDefault("POSTGRES_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = time.Minute * 30
	cfg.HealthCheckPeriod = time.Minute * 5

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// createTables creates the notification tables if they don't exist. Journal
// data itself lives in Firestore.
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// One FCM registration per user
	pushTokensTable := `
		CREATE TABLE IF NOT EXISTS push_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id VARCHAR(255) UNIQUE NOT NULL,
			fcm_token TEXT NOT NULL,
			platform VARCHAR(20) NOT NULL DEFAULT 'web',
			timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		);
	`

	// A reminder for one event is delivered to a user at most once per day
	reminderDeliveriesTable := `
		CREATE TABLE IF NOT EXISTS reminder_deliveries (
			user_id VARCHAR(255) NOT NULL,
			event_key TEXT NOT NULL,
			event_date DATE NOT NULL,
			sent_at TIMESTAMP DEFAULT NOW(),
			PRIMARY KEY (user_id, event_key, event_date)
		);
	`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_push_tokens_active ON push_tokens(active)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_deliveries_date ON reminder_deliveries(event_date)`,
	}

	for _, stmt := range append([]string{pushTokensTable, reminderDeliveriesTable}, indexes...) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '(' {
			return stmt[:i]
		}
	}
	return stmt
}

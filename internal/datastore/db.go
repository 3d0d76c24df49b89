package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// pq is the PostgreSQL driver
	_ "github.com/lib/pq"
)

var (
	// ErrNotFound reports a lookup that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a uniqueness violation (username/email).
	ErrDuplicate = errors.New("record already exists")
)

// Open connects to PostgreSQL and verifies the connection.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables the hub needs when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password TEXT NOT NULL,
			full_name VARCHAR(100),
			bio TEXT,
			role VARCHAR(16) NOT NULL,
			status VARCHAR(16) NOT NULL,
			is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			email_verification_token TEXT,
			preferences JSONB,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS benchmark_entries (
			id TEXT PRIMARY KEY,
			audio_file_name TEXT NOT NULL,
			audio_length DOUBLE PRECISION NOT NULL,
			model TEXT NOT NULL,
			ground_truth TEXT NOT NULL,
			transcription TEXT NOT NULL,
			wer_score DOUBLE PRECISION NOT NULL,
			inference_time DOUBLE PRECISION NOT NULL,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			author TEXT NOT NULL,
			author_id TEXT,
			excerpt TEXT NOT NULL,
			content TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'published',
			benchmark_data JSONB,
			model_performance_data JSONB,
			tags JSONB,
			views_count INTEGER NOT NULL DEFAULT 0,
			likes_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			action VARCHAR(100) NOT NULL,
			resource_type VARCHAR(50),
			resource_id TEXT,
			details JSONB,
			ip_address VARCHAR(45),
			user_agent TEXT,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

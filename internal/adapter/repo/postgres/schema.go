package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS interview_sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		category TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		questions JSONB NOT NULL,
		ideal_answers JSONB NOT NULL,
		user_answers JSONB NOT NULL DEFAULT '[]',
		evaluations JSONB NOT NULL DEFAULT '[]',
		overall_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_sessions_user ON interview_sessions (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		order_index INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables on startup when they do not exist yet.
// Statements are idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("op=postgres.EnsureSchema: %w", err)
		}
	}
	return nil
}

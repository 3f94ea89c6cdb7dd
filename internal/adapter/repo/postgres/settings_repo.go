package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// SettingsRepo stores runtime-administered key/value settings, such as the
// generation API key.
type SettingsRepo struct{ Pool PgxPool }

// NewSettingsRepo constructs a SettingsRepo with the given pool.
func NewSettingsRepo(p PgxPool) *SettingsRepo { return &SettingsRepo{Pool: p} }

// Get returns the value for key, or domain.ErrNotFound when unset.
func (r *SettingsRepo) Get(ctx domain.Context, key string) (string, error) {
	tracer := otel.Tracer("repo.settings")
	ctx, span := tracer.Start(ctx, "settings.Get")
	defer span.End()

	var value string
	err := r.Pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("op=settings.get: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("op=settings.get: %w", err)
	}
	return value, nil
}

// Set upserts the value for key.
func (r *SettingsRepo) Set(ctx domain.Context, key, value string) error {
	tracer := otel.Tracer("repo.settings")
	ctx, span := tracer.Start(ctx, "settings.Set")
	defer span.End()

	q := `INSERT INTO app_settings (key, value, updated_at) VALUES ($1,$2,$3)
	      ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=settings.set: %w", err)
	}
	return nil
}

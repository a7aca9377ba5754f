package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RateLimitRepository is the shared fixed-window limiter. The window check
// and the increment are one upsert, so the limit holds across concurrent
// requests and across multiple server instances sharing the database.
type RateLimitRepository struct {
	db     *sqlx.DB
	limit  int
	window time.Duration
}

func NewRateLimitRepository(db *sqlx.DB, limit int, window time.Duration) *RateLimitRepository {
	return &RateLimitRepository{db: db, limit: limit, window: window}
}

func (r *RateLimitRepository) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now().UTC()
	windowStart := now.Truncate(r.window)

	var count int
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO rate_limits (key, window_start, count)
        VALUES ($1, $2, 1)
        ON CONFLICT (key, window_start)
        DO UPDATE SET count = rate_limits.count + 1
        RETURNING count`,
		key, windowStart,
	).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("failed to record rate limit attempt: %w", err)
	}

	if count > r.limit {
		return false, windowStart.Add(r.window).Sub(now), nil
	}
	return true, 0, nil
}

// PruneBefore drops fully elapsed windows; called from the periodic sweep.
func (r *RateLimitRepository) PruneBefore(ctx context.Context, cutoff time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM rate_limits WHERE window_start < $1`, cutoff); err != nil {
		return fmt.Errorf("failed to prune rate limit windows: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/devfolio/internal/ratelimit"
)

var _ ratelimit.Store = (*Store)(nil)

// Get returns the stored window for key, or nil when there is none.
func (s *Store) Get(ctx context.Context, key string) (*ratelimit.Record, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("rate limit key is required")
	}

	var (
		count     int
		resetAtMs int64
	)
	row := s.DB.QueryRowContext(ctx, `
		SELECT count, reset_at_ms
		FROM rate_limits
		WHERE key = ?
	`, key)

	if err := row.Scan(&count, &resetAtMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}

	return &ratelimit.Record{
		Key:       key,
		Count:     count,
		ResetTime: time.UnixMilli(resetAtMs).UTC(),
	}, nil
}

// Set upserts a window record.
func (s *Store) Set(ctx context.Context, rec *ratelimit.Record) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}
	if rec == nil {
		return errors.New("rate limit record is required")
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (key, count, reset_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			count = excluded.count,
			reset_at_ms = excluded.reset_at_ms
	`, rec.Key, rec.Count, rec.ResetTime.UnixMilli())
	if err != nil {
		return fmt.Errorf("store rate limit: %w", err)
	}
	return nil
}

// Delete removes the record for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM rate_limits WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete rate limit: %w", err)
	}
	return nil
}

// DeleteExpired removes windows that ended before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errNotInitialized
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM rate_limits WHERE reset_at_ms < ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweep rate limits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rate limits: %w", err)
	}
	return int(affected), nil
}

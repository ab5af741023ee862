package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/devfolio/internal/ratelimit"
)

// RateLimitQuery selects limiter records for admin commands.
type RateLimitQuery struct {
	All    bool
	Key    string
	Prefix string
	// ExpiredOnly restricts the selection to windows that ended before Now.
	ExpiredOnly bool
	Now         time.Time
}

func (q RateLimitQuery) Validate() error {
	if q.All || strings.TrimSpace(q.Key) != "" || strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --key, or --prefix")
}

func (q RateLimitQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var (
		conds []string
		args  []any
	)
	switch {
	case q.All:
	case strings.TrimSpace(q.Key) != "":
		conds = append(conds, "key = ?")
		args = append(args, strings.TrimSpace(q.Key))
	default:
		conds = append(conds, "key LIKE ?")
		args = append(args, strings.TrimSpace(q.Prefix)+"%")
	}

	if q.ExpiredOnly {
		now := q.Now
		if now.IsZero() {
			now = time.Now()
		}
		conds = append(conds, "reset_at_ms < ?")
		args = append(args, now.UnixMilli())
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

// ListRateLimits returns matching records ordered by key.
func (s *Store) ListRateLimits(ctx context.Context, q RateLimitQuery) ([]ratelimit.Record, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT key, count, reset_at_ms
		FROM rate_limits
		%s
		ORDER BY key
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	records := []ratelimit.Record{}
	for rows.Next() {
		var (
			rec       ratelimit.Record
			resetAtMs int64
		)
		if err := rows.Scan(&rec.Key, &rec.Count, &resetAtMs); err != nil {
			return nil, fmt.Errorf("scan rate limits: %w", err)
		}
		rec.ResetTime = time.UnixMilli(resetAtMs).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}
	return records, nil
}

// CountRateLimits counts matching records.
func (s *Store) CountRateLimits(ctx context.Context, q RateLimitQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errNotInitialized
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	var count int
	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM rate_limits %s`, where), args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count rate limits: %w", err)
	}
	return count, nil
}

// ResetRateLimits deletes matching records and reports how many were removed.
func (s *Store) ResetRateLimits(ctx context.Context, q RateLimitQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errNotInitialized
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM rate_limits %s`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}
	return affected, nil
}

package ratelimit

import (
	"context"
	"time"
)

// Record is the stored state of one window. A record whose ResetTime has
// passed is expired and must be treated as absent.
type Record struct {
	Key       string
	Count     int
	ResetTime time.Time
}

// Expired reports whether the window has ended at now. The reset instant
// itself still belongs to the window.
func (r *Record) Expired(now time.Time) bool {
	return r == nil || now.After(r.ResetTime)
}

// Store persists window records.
type Store interface {
	// Get returns the record for key, or nil without error if there is none.
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) error
	// DeleteExpired removes every record with ResetTime before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// AtomicStore is implemented by stores that can run the whole
// read-increment-write step server side. Limiter prefers it over Get/Set.
type AtomicStore interface {
	Store
	// Hit counts one request against key and returns the resulting record
	// and whether the request is within limit.
	Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*Record, bool, error)
}

package ratelimit

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

const lockStripes = 64

// Result is the outcome of one Check. RetryAfter is set only when the request
// was rejected.
type Result struct {
	Success    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter *int
}

// Limiter applies fixed-window limits against a Store.
//
// Checks for the same key are serialized by a striped mutex, so within one
// process at most MaxRequests calls per window succeed. Across processes the
// guarantee depends on the Store: AtomicStore implementations stay exact,
// plain Get/Set stores may over-admit under contention.
type Limiter struct {
	Store Store
	Clock func() time.Time

	locks [lockStripes]sync.Mutex
}

// New creates a limiter over store. A nil store gets a MemoryStore.
func New(store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{Store: store}
}

// Check counts one request from caller against cfg and reports whether it is
// allowed. Exceeding the limit is a normal result, not an error. Invalid
// configuration and store failures are logged and the request is allowed.
func (l *Limiter) Check(ctx context.Context, caller string, cfg Config) Result {
	now := l.now()

	if err := cfg.Validate(); err != nil {
		logWarn("Invalid rate limit config, allowing request", zap.Error(err))
		return failOpen(cfg, now)
	}

	key := Key(caller, cfg.Identifier)

	if atomic, ok := l.Store.(AtomicStore); ok {
		rec, allowed, err := atomic.Hit(ctx, key, cfg.MaxRequests, cfg.Window, now)
		if err != nil {
			return l.storeFailure(cfg, key, "hit", now, err)
		}
		return resultFor(rec, cfg, allowed, now)
	}

	mu := l.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	rec, err := l.Store.Get(ctx, key)
	if err != nil {
		return l.storeFailure(cfg, key, "get", now, err)
	}

	if rec.Expired(now) {
		rec = &Record{Key: key, Count: 1, ResetTime: now.Add(cfg.Window)}
		if err := l.Store.Set(ctx, rec); err != nil {
			return l.storeFailure(cfg, key, "set", now, err)
		}
		return resultFor(rec, cfg, true, now)
	}

	if rec.Count >= cfg.MaxRequests {
		return resultFor(rec, cfg, false, now)
	}

	rec.Count++
	if err := l.Store.Set(ctx, rec); err != nil {
		return l.storeFailure(cfg, key, "set", now, err)
	}
	return resultFor(rec, cfg, true, now)
}

// Cleanup deletes every expired record and returns how many were removed.
// Live windows are never touched, so it is safe to run alongside Check.
func (l *Limiter) Cleanup(ctx context.Context) int {
	deleted, err := l.Store.DeleteExpired(ctx, l.now())
	if err != nil {
		metrics.RecordRateLimitStoreError("delete_expired")
		logWarn("Rate limit cleanup failed", zap.Error(err))
		return 0
	}
	metrics.RecordRateLimitCleanup(deleted)
	if deleted > 0 && observability.ServerLogger != nil {
		observability.ServerLogger.Debug("Rate limit cleanup", zap.Int("deleted", deleted))
	}
	return deleted
}

// Reset forgets the window for caller on cfg.
func (l *Limiter) Reset(ctx context.Context, caller string, cfg Config) error {
	return l.Store.Delete(ctx, Key(caller, cfg.Identifier))
}

func (l *Limiter) storeFailure(cfg Config, key, op string, now time.Time, err error) Result {
	metrics.RecordRateLimitStoreError(op)
	logWarn("Rate limit store failed, allowing request",
		zap.String("key", key),
		zap.String("op", op),
		zap.Error(err))
	return failOpen(cfg, now)
}

func (l *Limiter) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.locks[h.Sum32()%lockStripes]
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func resultFor(rec *Record, cfg Config, allowed bool, now time.Time) Result {
	if !allowed {
		retry := retryAfterSeconds(rec.ResetTime, now)
		return Result{
			Success:    false,
			Remaining:  0,
			ResetTime:  rec.ResetTime,
			RetryAfter: &retry,
		}
	}

	remaining := cfg.MaxRequests - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Success:   true,
		Remaining: remaining,
		ResetTime: rec.ResetTime,
	}
}

func failOpen(cfg Config, now time.Time) Result {
	remaining := cfg.MaxRequests - 1
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Success:   true,
		Remaining: remaining,
		ResetTime: now.Add(cfg.Window),
	}
}

// retryAfterSeconds rounds the time left in the window up to whole seconds.
func retryAfterSeconds(reset, now time.Time) int {
	left := reset.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func logWarn(msg string, fields ...zap.Field) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn(msg, fields...)
	}
}

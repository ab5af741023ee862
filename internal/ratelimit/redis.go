package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces limiter keys in a shared Redis.
const DefaultRedisPrefix = "ratelimit:"

// hitScript opens, counts or rejects in one round trip. Records are hashes
// {count, reset_ms}; the key expires one millisecond after the window so the
// reset instant itself still reads as live.
//
// KEYS[1] record key; ARGV[1] now ms; ARGV[2] window ms; ARGV[3] max.
// Returns {count, reset_ms, allowed}.
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local count = redis.call('HGET', KEYS[1], 'count')
local reset = redis.call('HGET', KEYS[1], 'reset_ms')
if (not count) or (not reset) or now > tonumber(reset) then
  reset = now + window
  redis.call('HSET', KEYS[1], 'count', 1, 'reset_ms', reset)
  redis.call('PEXPIREAT', KEYS[1], reset + 1)
  return {1, reset, 1}
end
count = tonumber(count)
reset = tonumber(reset)
if count < max then
  count = redis.call('HINCRBY', KEYS[1], 'count', 1)
  return {count, reset, 1}
end
return {count, reset, 0}
`)

// RedisStore shares limiter records between service instances. It implements
// AtomicStore, so checks stay exact across processes.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides DefaultRedisPrefix. A blank prefix keeps the default.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		s.prefix = prefix
	}
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string { return s.prefix + key }

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	count, err := strconv.Atoi(fields["count"])
	if err != nil {
		return nil, fmt.Errorf("redis get %s: bad count %q: %w", key, fields["count"], err)
	}
	resetMs, err := strconv.ParseInt(fields["reset_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis get %s: bad reset_ms %q: %w", key, fields["reset_ms"], err)
	}

	return &Record{Key: key, Count: count, ResetTime: time.UnixMilli(resetMs)}, nil
}

func (s *RedisStore) Set(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	k := s.key(rec.Key)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, "count", rec.Count, "reset_ms", rec.ResetTime.UnixMilli())
		pipe.PExpireAt(ctx, k, rec.ResetTime.Add(time.Millisecond))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", rec.Key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis drops records itself via PEXPIREAT.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Hit(ctx context.Context, key string, max int, window time.Duration, now time.Time) (*Record, bool, error) {
	vals, err := hitScript.Run(ctx, s.rdb, []string{s.key(key)},
		now.UnixMilli(), window.Milliseconds(), max).Int64Slice()
	if err != nil {
		return nil, false, fmt.Errorf("redis hit %s: %w", key, err)
	}
	if len(vals) != 3 {
		return nil, false, fmt.Errorf("redis hit %s: unexpected reply %v", key, vals)
	}

	rec := &Record{
		Key:       key,
		Count:     int(vals[0]),
		ResetTime: time.UnixMilli(vals[1]),
	}
	return rec, vals[2] == 1, nil
}

// Ping checks connectivity for health probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

var _ AtomicStore = (*RedisStore)(nil)

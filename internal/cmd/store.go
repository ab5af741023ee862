package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/devfolio/devfolio/internal/config"
	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// openStore opens and migrates the libsql store described by cfg.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// newRedisClient builds a client for the configured addresses. More than one
// address selects cluster mode.
func newRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// serviceDeps holds the long-lived resources serve builds from config.
type serviceDeps struct {
	limiter *ratelimit.Limiter
	store   *store.Store
	redis   redis.UniversalClient
}

// buildServiceDeps opens the limiter backend and, when needed, the libsql store.
func buildServiceDeps(ctx context.Context, cfg *config.Config) (*serviceDeps, error) {
	deps := &serviceDeps{}

	if cfg.RateLimit.Backend == config.BackendLibsql || cfg.Contact.Persist {
		db, err := openStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		deps.store = db
	}

	switch cfg.RateLimit.Backend {
	case config.BackendRedis:
		deps.redis = newRedisClient(cfg.Redis)
		rs := ratelimit.NewRedisStore(deps.redis, ratelimit.WithRedisPrefix(cfg.Redis.Prefix))
		if err := rs.Ping(ctx); err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("connect redis %s: %w", strings.Join(cfg.Redis.Addrs, ","), err)
		}
		deps.limiter = ratelimit.New(rs)
	case config.BackendLibsql:
		deps.limiter = ratelimit.New(deps.store)
	default:
		deps.limiter = ratelimit.New(ratelimit.NewMemoryStore())
	}

	return deps, nil
}

// Close releases every opened resource.
func (d *serviceDeps) Close() error {
	var errs []error
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

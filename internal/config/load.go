// Package config loads devfolio configuration with viper and decodes it into
// typed structs with mapstructure.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/devfolio/devfolio/internal/validation"
)

// AppName names config, data and binary paths.
const AppName = "devfolio"

// EnvPrefix prefixes every environment override, e.g. DEVFOLIO_SERVER_PORT.
const EnvPrefix = "DEVFOLIO"

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.admin_token", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.backend", BackendMemory)
	v.SetDefault("rate_limit.cleanup_interval", "5m")
	v.SetDefault("rate_limit.key_header", "")
	v.SetDefault("rate_limit.trust_forwarded_for", false)
	v.SetDefault("rate_limit.routes", map[string]any{})

	// Redis defaults
	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "devfolio:ratelimit:")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)

	// GitHub defaults
	v.SetDefault("github.username", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.timeout", "10s")
	v.SetDefault("github.requests_per_second", 1.0)
	v.SetDefault("github.burst", 5)
	v.SetDefault("github.cache_ttl", "5m")
	v.SetDefault("github.breaker_failures", 5)
	v.SetDefault("github.breaker_timeout", "30s")

	// Contact defaults
	v.SetDefault("contact.persist", false)
	v.SetDefault("contact.max_message_length", 5000)
}

// BindEnv makes every key overridable through DEVFOLIO_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v, validates them and makes them the
// current configuration. It is safe to call again on reload.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	setConfig(cfg)
	return cfg, nil
}

// Decode converts a raw settings map into a validated Config.
func Decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.RateLimit.Backend == BackendRedis && len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("invalid config: rate_limit.backend=redis requires redis.addrs")
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns the XDG config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}

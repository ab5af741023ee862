package config

import (
	"time"

	"github.com/devfolio/devfolio/internal/ratelimit"
)

// Config is the complete service configuration. Values come from, in
// increasing precedence: defaults (SetDefaults), the config file, and
// DEVFOLIO_* environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Health    HealthConfig    `mapstructure:"health" yaml:"health"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	GitHub    GitHubConfig    `mapstructure:"github" yaml:"github"`
	Contact   ContactConfig   `mapstructure:"contact" yaml:"contact"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" validate:"required"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// AdminToken enables the bearer-protected /admin/signal endpoint when set.
	AdminToken string `mapstructure:"admin_token" yaml:"-"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Port is the dedicated exporter port; /metrics on the main port proxies it.
	Port int `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver" validate:"oneof=libsql"`
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url"`
	AuthToken string `mapstructure:"auth_token" yaml:"-"`
}

// Rate limit backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendLibsql = "libsql"
)

// RateLimitConfig selects the limiter store and per-route limits.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Backend         string        `mapstructure:"backend" yaml:"backend" validate:"oneof=memory redis libsql"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval" validate:"gte=0"`
	// KeyHeader, when set, identifies callers by this header before falling back to IP.
	KeyHeader         string `mapstructure:"key_header" yaml:"key_header"`
	TrustForwardedFor bool   `mapstructure:"trust_forwarded_for" yaml:"trust_forwarded_for"`
	// Routes overrides limits by route identifier, e.g. "contact-form".
	Routes map[string]RouteLimit `mapstructure:"routes" yaml:"routes" validate:"dive"`
}

// RouteLimit overrides one route's window.
type RouteLimit struct {
	MaxRequests int           `mapstructure:"max_requests" yaml:"max_requests" validate:"gt=0"`
	Window      time.Duration `mapstructure:"window" yaml:"window" validate:"gt=0"`
}

// Route returns base with any configured override for its identifier applied.
func (c RateLimitConfig) Route(base ratelimit.Config) ratelimit.Config {
	if override, ok := c.Routes[base.Identifier]; ok {
		if override.MaxRequests > 0 {
			base.MaxRequests = override.MaxRequests
		}
		if override.Window > 0 {
			base.Window = override.Window
		}
	}
	return base
}

// RedisConfig configures the shared limiter store.
type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs" yaml:"addrs"`
	Password string   `mapstructure:"password" yaml:"-"`
	DB       int      `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Prefix   string   `mapstructure:"prefix" yaml:"prefix"`
}

// CORSConfig controls browser access from the portfolio site.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
}

// GitHubConfig configures the activity feed collaborator.
type GitHubConfig struct {
	Username          string        `mapstructure:"username" yaml:"username"`
	Token             string        `mapstructure:"token" yaml:"-"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" yaml:"burst" validate:"gt=0"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures" yaml:"breaker_failures" validate:"gt=0"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout" yaml:"breaker_timeout" validate:"gt=0"`
}

// ContactConfig configures the contact form route.
type ContactConfig struct {
	// Persist stores submissions in the libsql store; otherwise they are only logged.
	Persist          bool `mapstructure:"persist" yaml:"persist"`
	MaxMessageLength int  `mapstructure:"max_message_length" yaml:"max_message_length" validate:"gt=0"`
}

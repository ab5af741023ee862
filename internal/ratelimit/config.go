package ratelimit

import (
	"fmt"
	"time"

	"github.com/devfolio/devfolio/internal/validation"
)

// Config describes one rate-limited call site.
type Config struct {
	MaxRequests int           `mapstructure:"max_requests" yaml:"max_requests" validate:"gt=0"`
	Window      time.Duration `mapstructure:"window" yaml:"window" validate:"gt=0"`
	Identifier  string        `mapstructure:"identifier" yaml:"identifier" validate:"required"`
}

// Validate checks the limits are usable.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("rate limit %q: %w", c.Identifier, err)
	}
	return nil
}

// Route presets used by the API.
var (
	ContactForm = Config{
		MaxRequests: 5,
		Window:      15 * time.Minute,
		Identifier:  "contact-form",
	}

	GitHubActivity = Config{
		MaxRequests: 30,
		Window:      15 * time.Minute,
		Identifier:  "github-activity-api",
	}
)

// Key builds the store key for a caller on a route.
func Key(caller, identifier string) string {
	return caller + ":" + identifier
}

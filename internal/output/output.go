// Package output renders CLI results as tables, JSON or Markdown.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders CLI results.
type Formatter interface {
	FormatRateLimits(records []ratelimit.Record, now time.Time) (string, error)
	FormatContactMessages(messages []store.ContactMessage) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Extension returns the file extension used when writing format to a directory.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// rateLimitState describes a record relative to now.
func rateLimitState(rec ratelimit.Record, now time.Time) string {
	if rec.Expired(now) {
		return "expired"
	}
	return "active"
}

// resetIn renders whole seconds until the window resets, or "-" once expired.
func resetIn(rec ratelimit.Record, now time.Time) string {
	if rec.Expired(now) {
		return "-"
	}
	return rec.ResetTime.Sub(now).Round(time.Second).String()
}

func truncate(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

package output

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testRecords() []ratelimit.Record {
	return []ratelimit.Record{
		{Key: "203.0.113.1:contact-form", Count: 3, ResetTime: testNow.Add(10 * time.Minute)},
		{Key: "203.0.113.2:github-activity-api", Count: 30, ResetTime: testNow.Add(-time.Minute)},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatExtension(t *testing.T) {
	require.Equal(t, "json", FormatJSON.Extension())
	require.Equal(t, "md", FormatMarkdown.Extension())
	require.Equal(t, "txt", FormatTable.Extension())
}

func TestTableFormatterRateLimits(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatRateLimits(testRecords(), testNow)
	require.NoError(t, err)
	require.Contains(t, rendered, "203.0.113.1:contact-form")
	require.Contains(t, rendered, "10m0s")
	require.Contains(t, rendered, "expired")
	require.Contains(t, rendered, "1/2 active")
}

func TestJSONFormatterRateLimits(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatRateLimits(testRecords(), testNow)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "active", rows[0]["state"])
	require.Equal(t, "expired", rows[1]["state"])
	require.Equal(t, "2025-01-01T12:10:00Z", rows[0]["resetTime"])
}

func TestJSONFormatterEmptyIsArray(t *testing.T) {
	rendered, err := (&JSONFormatter{}).FormatRateLimits(nil, testNow)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}

func TestMarkdownEscaping(t *testing.T) {
	messages := []store.ContactMessage{{
		Name:      "Ada | Lovelace",
		Email:     "ada@example.com",
		Message:   "line one\nline two",
		CreatedAt: testNow,
	}}

	rendered, err := NewFormatter(FormatMarkdown).FormatContactMessages(messages)
	require.NoError(t, err)
	require.Contains(t, rendered, "Ada \\| Lovelace")
	require.Contains(t, rendered, "line one line two")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
	require.True(t, strings.HasPrefix(truncate(strings.Repeat("x", 100), 60), "xxx"))
}

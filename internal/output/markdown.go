package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatRateLimits renders stored windows as Markdown.
func (f *MarkdownFormatter) FormatRateLimits(records []ratelimit.Record, now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Rate limits\n\n")
	sb.WriteString("| Key | Count | Resets At | State |\n")
	sb.WriteString("|-----|-------|-----------|-------|\n")

	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			escapeMarkdownCell(rec.Key),
			rec.Count,
			rec.ResetTime.UTC().Format(time.RFC3339),
			rateLimitState(rec, now),
		))
	}

	return sb.String(), nil
}

// FormatContactMessages renders submissions as Markdown.
func (f *MarkdownFormatter) FormatContactMessages(messages []store.ContactMessage) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Contact messages\n\n")
	sb.WriteString("| Received | Name | Email | Subject | Message |\n")
	sb.WriteString("|----------|------|-------|---------|---------|\n")

	for _, msg := range messages {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			msg.CreatedAt.UTC().Format(time.RFC3339),
			escapeMarkdownCell(msg.Name),
			escapeMarkdownCell(msg.Email),
			escapeMarkdownCell(msg.Subject),
			escapeMarkdownCell(truncate(msg.Message, 80)),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}

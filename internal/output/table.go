package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatRateLimits renders stored windows as a table.
func (f *TableFormatter) FormatRateLimits(records []ratelimit.Record, now time.Time) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "Count", "Resets At", "Resets In", "State"})

	active := 0
	for _, rec := range records {
		state := rateLimitState(rec, now)
		if state == "active" {
			active++
		}
		t.AppendRow(table.Row{
			rec.Key,
			rec.Count,
			rec.ResetTime.UTC().Format(time.RFC3339),
			resetIn(rec, now),
			state,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d/%d active", active, len(records))})
	t.Style().Format.Footer = text.FormatDefault
	return t.Render(), nil
}

// FormatContactMessages renders submissions as a table.
func (f *TableFormatter) FormatContactMessages(messages []store.ContactMessage) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Received", "Name", "Email", "Subject", "Message"})

	for _, msg := range messages {
		t.AppendRow(table.Row{
			msg.CreatedAt.UTC().Format(time.RFC3339),
			msg.Name,
			msg.Email,
			msg.Subject,
			truncate(msg.Message, 60),
		})
	}

	return t.Render(), nil
}

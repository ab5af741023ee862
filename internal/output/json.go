package output

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

type rateLimitJSON struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	ResetTime time.Time `json:"resetTime"`
	State     string    `json:"state"`
}

type contactJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Caller    string    `json:"caller,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FormatRateLimits renders stored windows as a JSON array.
func (f *JSONFormatter) FormatRateLimits(records []ratelimit.Record, now time.Time) (string, error) {
	rows := make([]rateLimitJSON, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rateLimitJSON{
			Key:       rec.Key,
			Count:     rec.Count,
			ResetTime: rec.ResetTime.UTC(),
			State:     rateLimitState(rec, now),
		})
	}
	return f.marshal(rows)
}

// FormatContactMessages renders submissions as a JSON array.
func (f *JSONFormatter) FormatContactMessages(messages []store.ContactMessage) (string, error) {
	rows := make([]contactJSON, 0, len(messages))
	for _, msg := range messages {
		rows = append(rows, contactJSON{
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Subject:   msg.Subject,
			Message:   msg.Message,
			Caller:    msg.Caller,
			CreatedAt: msg.CreatedAt.UTC(),
		})
	}
	return f.marshal(rows)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}

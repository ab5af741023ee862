package github

import "time"

// Limits for the activity feed.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Event is the subset of a GitHub public event the feed needs.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Repo      EventRepo `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepo identifies the repository an event happened in.
type EventRepo struct {
	Name string `json:"name"`
}

// Activity is one feed entry as served to the site.
type Activity struct {
	Type      string    `json:"type"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"createdAt"`
	URL       string    `json:"url"`
}

// ToActivities maps events to feed entries, keeping at most limit.
func ToActivities(events []Event, limit int) []Activity {
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	out := make([]Activity, 0, limit)
	for _, ev := range events[:limit] {
		out = append(out, Activity{
			Type:      ev.Type,
			Repo:      ev.Repo.Name,
			CreatedAt: ev.CreatedAt.UTC(),
			URL:       "https://github.com/" + ev.Repo.Name,
		})
	}
	return out
}

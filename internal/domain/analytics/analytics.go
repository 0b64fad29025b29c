package analytics

import (
	"context"
	"time"
)

// ViewEvent is published every time a public portfolio page is rendered.
type ViewEvent struct {
	Username string    `json:"username"`
	ViewedAt time.Time `json:"viewed_at"`
	Referrer string    `json:"referrer,omitempty"`
}

// DailyViews is one row of the per-day view table.
type DailyViews struct {
	Username string
	Day      time.Time
	Views    int64
}

type Repository interface {
	IncrementDaily(ctx context.Context, username string, day time.Time) error
	ListDaily(ctx context.Context, username string, since time.Time) ([]DailyViews, error)
}

// Counter keeps the running total shown on the dashboard.
type Counter interface {
	Increment(ctx context.Context, username string) error
	Total(ctx context.Context, username string) (int64, error)
}

// Publisher hands view events to the event bus.
type Publisher interface {
	PublishView(ctx context.Context, ev ViewEvent) error
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package journal
package journal

import (
	"context"
	"time"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string // e.g., "order", "lifecycle", "error"
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}

// Nop discards events. Used when no journal DSN is configured.
type Nop struct{}

func (Nop) LogEvent(ctx context.Context, event Event) error { return nil }

func (Nop) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error) {
	return nil, nil
}

// Package notify announces dataset changes to downstream consumers.
package notify

import (
	"context"
	"time"
)

// Event summarizes one task that rewrote the stations dataset.
type Event struct {
	Task      string         `json:"task"`
	Stations  int            `json:"stations"`
	Changed   int            `json:"changed"`
	Details   map[string]int `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notifier publishes dataset change events.
type Notifier interface {
	StationsUpdated(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) StationsUpdated(context.Context, Event) error { return nil }
func (Noop) Close() error                                 { return nil }

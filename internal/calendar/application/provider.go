// Package application defines the calendar provider port and the
// registry that selects a configured provider by name.
package application

import (
	"context"
	"time"
)

// BusyInterval is one external calendar event's occupied span, already
// normalized to UTC instants.
type BusyInterval struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// EventInput describes a calendar event to create or update.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// Provider is the external calendar integration port.
type Provider interface {
	Name() string
	// ListBusyIntervals returns occupied spans overlapping [from, to).
	ListBusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
	CreateEvent(ctx context.Context, input EventInput) (eventID string, err error)
	UpdateEvent(ctx context.Context, eventID string, input EventInput) error
	DeleteEvent(ctx context.Context, eventID string) error
}

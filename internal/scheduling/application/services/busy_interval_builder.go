// Package services contains the scheduling engine: occupancy building,
// slot scoring and the day-by-day slot search.
package services

import (
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
)

// BusyInput collects everything that occupies time on the timeline.
type BusyInput struct {
	// External calendar events. Entries whose event ID is in
	// IgnoreEventIDs are skipped, so a task being rescheduled is not
	// blocked by its own old calendar event.
	External       []calendarApp.BusyInterval
	IgnoreEventIDs map[string]struct{}
	// Scheduled tasks; their windows are padded by Buffer on both ends.
	Tasks []*task.Task
	// Windows chosen earlier in the same operation, also buffer-padded.
	Extra  []domain.Interval
	Buffer time.Duration
}

// BuildBusyIntervals merges external events, scheduled tasks and
// already-accumulated placements into one list sorted by start. Overlaps
// are kept as-is; the slot finder's cursor handles them.
func BuildBusyIntervals(input BusyInput) []domain.Interval {
	busy := make([]domain.Interval, 0, len(input.External)+len(input.Tasks)+len(input.Extra))

	for _, event := range input.External {
		if event.EventID != "" {
			if _, ignored := input.IgnoreEventIDs[event.EventID]; ignored {
				continue
			}
		}
		busy = append(busy, domain.NewInterval(event.Start, event.End))
	}

	for _, t := range input.Tasks {
		if !t.HasWindow() {
			continue
		}
		window := domain.NewInterval(*t.ScheduledStart(), *t.ScheduledEnd())
		busy = append(busy, window.Pad(input.Buffer))
	}

	for _, window := range input.Extra {
		busy = append(busy, window.Pad(input.Buffer))
	}

	domain.SortIntervals(busy)
	return busy
}

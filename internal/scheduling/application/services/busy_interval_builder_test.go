package services

import (
	"testing"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func scheduledTask(t *testing.T, start time.Time, minutes int) *task.Task {
	t.Helper()
	tk, err := task.NewTask(uuid.New(), "fixture")
	require.NoError(t, err)
	require.NoError(t, tk.SetEstimate(value_objects.NewDuration(minutes)))
	require.NoError(t, tk.Schedule(start, start.Add(time.Duration(minutes)*time.Minute), ""))
	return tk
}

func TestBuildBusyIntervals(t *testing.T) {
	buffer := 5 * time.Minute

	busy := BuildBusyIntervals(BusyInput{
		External: []calendarApp.BusyInterval{
			{EventID: "evt-1", Start: at(13, 0), End: at(14, 0)},
		},
		Tasks:  []*task.Task{scheduledTask(t, at(10, 0), 60)},
		Extra:  []domain.Interval{domain.NewInterval(at(15, 0), at(15, 30))},
		Buffer: buffer,
	})

	require.Len(t, busy, 3)

	// Tasks and accumulated placements are padded, external events not.
	assert.Equal(t, domain.NewInterval(at(9, 55), at(11, 5)), busy[0])
	assert.Equal(t, domain.NewInterval(at(13, 0), at(14, 0)), busy[1])
	assert.Equal(t, domain.NewInterval(at(14, 55), at(15, 35)), busy[2])
}

func TestBuildBusyIntervals_IgnoresExcludedEvents(t *testing.T) {
	busy := BuildBusyIntervals(BusyInput{
		External: []calendarApp.BusyInterval{
			{EventID: "evt-old", Start: at(9, 0), End: at(10, 0)},
			{EventID: "evt-keep", Start: at(11, 0), End: at(12, 0)},
		},
		IgnoreEventIDs: map[string]struct{}{"evt-old": {}},
	})

	require.Len(t, busy, 1)
	assert.Equal(t, at(11, 0), busy[0].Start)
}

func TestBuildBusyIntervals_SkipsUnscheduledTasks(t *testing.T) {
	tk, err := task.NewTask(uuid.New(), "unscheduled")
	require.NoError(t, err)

	busy := BuildBusyIntervals(BusyInput{Tasks: []*task.Task{tk}})
	assert.Empty(t, busy)
}

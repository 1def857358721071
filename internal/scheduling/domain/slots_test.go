package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	a := NewInterval(at(9, 0), at(10, 0))

	assert.True(t, a.Overlaps(NewInterval(at(9, 30), at(10, 30))))
	assert.True(t, a.Overlaps(NewInterval(at(8, 0), at(11, 0))))
	// Touching endpoints do not overlap: intervals are half-open.
	assert.False(t, a.Overlaps(NewInterval(at(10, 0), at(11, 0))))
	assert.False(t, a.Overlaps(NewInterval(at(8, 0), at(9, 0))))
}

func TestInterval_Pad(t *testing.T) {
	padded := NewInterval(at(10, 0), at(11, 0)).Pad(5 * time.Minute)
	assert.Equal(t, at(9, 55), padded.Start)
	assert.Equal(t, at(11, 5), padded.End)
}

func TestFindFreeSlots_SingleBusyBlock(t *testing.T) {
	window := NewInterval(at(9, 0), at(18, 0))
	busy := []Interval{NewInterval(at(10, 0), at(11, 0))}

	slots := FindFreeSlots(window, busy, 30*time.Minute)
	require.Len(t, slots, 2)

	// One slot per gap, each at the earliest position.
	assert.Equal(t, NewInterval(at(9, 0), at(9, 30)), slots[0])
	assert.Equal(t, NewInterval(at(11, 0), at(11, 30)), slots[1])
}

func TestFindFreeSlots_OverlappingBusy(t *testing.T) {
	window := NewInterval(at(9, 0), at(12, 0))
	busy := []Interval{
		NewInterval(at(9, 0), at(10, 30)),
		NewInterval(at(10, 0), at(11, 0)),
	}

	slots := FindFreeSlots(window, busy, 60*time.Minute)
	require.Len(t, slots, 1)
	assert.Equal(t, NewInterval(at(11, 0), at(12, 0)), slots[0])
}

func TestFindFreeSlots_GapTooSmall(t *testing.T) {
	window := NewInterval(at(9, 0), at(10, 0))
	busy := []Interval{NewInterval(at(9, 20), at(9, 50))}

	slots := FindFreeSlots(window, busy, 30*time.Minute)
	assert.Empty(t, slots)
}

func TestFindFreeSlots_FullyBooked(t *testing.T) {
	window := NewInterval(at(9, 0), at(17, 0))
	busy := []Interval{NewInterval(at(8, 0), at(18, 0))}

	assert.Empty(t, FindFreeSlots(window, busy, 15*time.Minute))
}

func TestFindFreeSlots_EmptyBusy(t *testing.T) {
	window := NewInterval(at(9, 0), at(17, 0))

	slots := FindFreeSlots(window, nil, 45*time.Minute)
	require.Len(t, slots, 1)
	assert.Equal(t, NewInterval(at(9, 0), at(9, 45)), slots[0])
}

func TestFindFreeSlots_BusyOutsideWindowIgnored(t *testing.T) {
	window := NewInterval(at(9, 0), at(10, 0))
	busy := []Interval{
		NewInterval(at(7, 0), at(8, 0)),
		NewInterval(at(11, 0), at(12, 0)),
	}

	slots := FindFreeSlots(window, busy, 60*time.Minute)
	require.Len(t, slots, 1)
	assert.Equal(t, window, slots[0])
}

func TestFindFreeSlots_SlotsStayInsideWindow(t *testing.T) {
	window := NewInterval(at(9, 0), at(17, 0))
	busy := []Interval{
		NewInterval(at(9, 30), at(10, 0)),
		NewInterval(at(13, 0), at(16, 45)),
	}

	for _, slot := range FindFreeSlots(window, busy, 30*time.Minute) {
		assert.True(t, window.Contains(slot), "slot %v escapes window", slot)
	}
}

func TestScheduleChange(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	change := NewScheduleChange(userID, TriggerEarlyCompletion, taskID)
	assert.False(t, change.HasMoves())

	change.RecordMove(TaskMove{
		TaskID:        uuid.New(),
		PreviousStart: at(14, 0),
		PreviousEnd:   at(14, 30),
		NewStart:      at(11, 0),
		NewEnd:        at(11, 30),
		Action:        ActionMoved,
	})
	require.True(t, change.HasMoves())

	change.Finalize()
	require.Len(t, change.DomainEvents(), 1)
	event, ok := change.DomainEvents()[0].(*ScheduleChanged)
	require.True(t, ok)
	assert.Equal(t, string(TriggerEarlyCompletion), event.Trigger)
	assert.Equal(t, 1, event.MoveCount)
}

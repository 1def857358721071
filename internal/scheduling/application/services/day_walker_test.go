package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWalker() *DayWalker {
	return NewDayWalker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMemory() memoryDomain.UserMemory {
	return memoryDomain.UserMemory{
		Timezone: "UTC",
		WorkingHours: memoryDomain.WorkingHours{
			StartHour:         9,
			EndHour:           18,
			MaxExtensionHours: 0,
		},
		EnergyMap:     memoryDomain.EnergyMap{},
		BufferMinutes: 5,
		MaxDaysAhead:  7,
	}
}

func TestDayWalker_PrefersEnergyMatchedMorningSlot(t *testing.T) {
	memory := testMemory()
	memory.EnergyMap = memoryDomain.EnergyMap{"09:00-12:00": value_objects.EnergyHigh}

	input := WalkInput{
		Duration:      30 * time.Minute,
		Priority:      value_objects.PriorityMedium,
		Energy:        value_objects.EnergyHigh,
		Memory:        memory,
		ExistingTasks: []*task.Task{scheduledTask(t, at(10, 0), 60)},
		Now:           at(8, 0),
	}

	slot, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	assert.Equal(t, domain.NewInterval(at(9, 0), at(9, 30)), slot)
}

func TestDayWalker_ClampsTodayToNowPlusBuffer(t *testing.T) {
	input := WalkInput{
		Duration: 30 * time.Minute,
		Priority: value_objects.PriorityMedium,
		Energy:   value_objects.EnergyMedium,
		Memory:   testMemory(),
		Now:      at(10, 0),
	}

	slot, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	assert.Equal(t, at(10, 5), slot.Start)
}

func TestDayWalker_UsesExtensionWhenPrimaryWindowIsFull(t *testing.T) {
	memory := testMemory()
	memory.WorkingHours.EndHour = 17
	memory.WorkingHours.MaxExtensionHours = 3

	input := WalkInput{
		Duration: 60 * time.Minute,
		Priority: value_objects.PriorityMedium,
		Energy:   value_objects.EnergyMedium,
		Memory:   memory,
		External: []calendarApp.BusyInterval{
			{EventID: "evt-allday", Start: at(8, 0), End: at(17, 0)},
		},
		Now: at(8, 0),
	}

	slot, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	assert.Equal(t, domain.NewInterval(at(17, 0), at(18, 0)), slot)
}

func TestDayWalker_MovesToNextDayWhenTodayIsFull(t *testing.T) {
	input := WalkInput{
		Duration: 60 * time.Minute,
		Priority: value_objects.PriorityMedium,
		Energy:   value_objects.EnergyMedium,
		Memory:   testMemory(),
		External: []calendarApp.BusyInterval{
			{EventID: "evt-today", Start: at(8, 0), End: at(19, 0)},
		},
		Now: at(8, 0),
	}

	slot, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	assert.Equal(t, at(9, 0).AddDate(0, 0, 1), slot.Start)
}

func TestDayWalker_NoSlotWithinHorizon(t *testing.T) {
	memory := testMemory()
	memory.MaxDaysAhead = 2

	input := WalkInput{
		Duration: 60 * time.Minute,
		Priority: value_objects.PriorityMedium,
		Energy:   value_objects.EnergyMedium,
		Memory:   memory,
		External: []calendarApp.BusyInterval{
			{EventID: "evt-block", Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 10)},
		},
		Now: at(8, 0),
	}

	_, ok := testWalker().FindSlot(input)
	assert.False(t, ok)
}

func TestDayWalker_Idempotent(t *testing.T) {
	input := WalkInput{
		Duration:      45 * time.Minute,
		Priority:      value_objects.PriorityHigh,
		Energy:        value_objects.EnergyMedium,
		Memory:        testMemory(),
		ExistingTasks: []*task.Task{scheduledTask(t, at(9, 0), 90)},
		Now:           at(8, 0),
	}

	first, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	second, ok := testWalker().FindSlot(input)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestDayWalker_ExtraBusyBlocksSlot(t *testing.T) {
	input := WalkInput{
		Duration:  60 * time.Minute,
		Priority:  value_objects.PriorityMedium,
		Energy:    value_objects.EnergyMedium,
		Memory:    testMemory(),
		ExtraBusy: []domain.Interval{domain.NewInterval(at(9, 0), at(10, 0))},
		Now:       at(8, 0),
	}

	slot, ok := testWalker().FindSlot(input)
	require.True(t, ok)

	// The accumulated placement plus buffer pushes the slot past 10:05.
	assert.Equal(t, at(10, 5), slot.Start)
}

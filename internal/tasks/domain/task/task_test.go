package task

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	tk, err := NewTask(userID, "  Write report  ")
	require.NoError(t, err)

	assert.Equal(t, "Write report", tk.Title())
	assert.Equal(t, StatusPending, tk.Status())
	assert.Equal(t, value_objects.PriorityMedium, tk.Priority())
	assert.Equal(t, value_objects.EnergyMedium, tk.Energy())
	assert.False(t, tk.HasWindow())
	assert.Len(t, tk.DomainEvents(), 1)
}

func TestNewTask_EmptyTitle(t *testing.T) {
	_, err := NewTask(uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestTask_Schedule(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Review PR")
	require.NoError(t, err)
	require.NoError(t, tk.SetEstimate(value_objects.NewDuration(45)))

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("window must match estimate", func(t *testing.T) {
		err := tk.Schedule(start, start.Add(30*time.Minute), "")
		assert.ErrorIs(t, err, ErrWindowMismatch)
	})

	t.Run("end must be after start", func(t *testing.T) {
		err := tk.Schedule(start, start, "")
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("valid window", func(t *testing.T) {
		require.NoError(t, tk.Schedule(start, start.Add(45*time.Minute), "evt-1"))
		assert.Equal(t, StatusScheduled, tk.Status())
		assert.True(t, tk.HasWindow())
		assert.Equal(t, "evt-1", tk.CalendarEventID())
	})
}

func TestTask_Reschedule(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Plan sprint")
	require.NoError(t, err)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	err = tk.Reschedule(start, start.Add(30*time.Minute))
	assert.ErrorIs(t, err, ErrNotScheduled)

	require.NoError(t, tk.Schedule(start, start.Add(30*time.Minute), ""))

	newStart := start.Add(2 * time.Hour)
	require.NoError(t, tk.Reschedule(newStart, newStart.Add(30*time.Minute)))
	assert.Equal(t, newStart, *tk.ScheduledStart())
}

func TestTask_Complete(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Ship release")
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	require.NoError(t, tk.Complete(now))

	assert.Equal(t, StatusCompleted, tk.Status())
	require.NotNil(t, tk.CompletedAt())
	assert.Equal(t, now, *tk.CompletedAt())

	assert.ErrorIs(t, tk.Complete(now), ErrTaskAlreadyComplete)
	assert.ErrorIs(t, tk.SetTitle("x"), ErrTaskAlreadyComplete)
}

func TestTask_ChangePriority(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Fix bug")
	require.NoError(t, err)
	tk.ClearDomainEvents()

	// Same value records no event.
	require.NoError(t, tk.ChangePriority(value_objects.PriorityMedium))
	assert.Empty(t, tk.DomainEvents())

	require.NoError(t, tk.ChangePriority(value_objects.PriorityUrgent))
	require.Len(t, tk.DomainEvents(), 1)
	event, ok := tk.DomainEvents()[0].(*TaskPriorityChanged)
	require.True(t, ok)
	assert.Equal(t, 3, event.OldPriority)
	assert.Equal(t, 5, event.NewPriority)
}

func TestTask_ClearSchedule(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Prep demo")
	require.NoError(t, err)

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	require.NoError(t, tk.Schedule(start, start.Add(30*time.Minute), "evt-9"))
	require.NoError(t, tk.ClearSchedule())

	assert.Equal(t, StatusPending, tk.Status())
	assert.False(t, tk.HasWindow())
	assert.Empty(t, tk.CalendarEventID())
}

func TestTask_Cancel(t *testing.T) {
	tk, err := NewTask(uuid.New(), "Old idea")
	require.NoError(t, err)

	require.NoError(t, tk.Cancel())
	assert.Equal(t, StatusCancelled, tk.Status())
	assert.False(t, tk.IsActive())

	// Idempotent.
	require.NoError(t, tk.Cancel())
}

// Package queries implements the scheduling read operations.
package queries

import (
	"context"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/application/services"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

// DefaultChangeLimit bounds how many audit records a listing returns.
const DefaultChangeLimit = 20

// ListChangesQuery lists recent schedule changes.
type ListChangesQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ListChangesHandler lists a user's schedule change history.
type ListChangesHandler struct {
	repo domain.Repository
}

// NewListChangesHandler creates a handler.
func NewListChangesHandler(repo domain.Repository) *ListChangesHandler {
	return &ListChangesHandler{repo: repo}
}

// Handle returns the most recent changes first.
func (h *ListChangesHandler) Handle(ctx context.Context, query ListChangesQuery) ([]*domain.ScheduleChange, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultChangeLimit
	}
	return h.repo.ListByUser(ctx, query.UserID, limit)
}

// FindSlotQuery previews where a hypothetical task would land without
// booking anything.
type FindSlotQuery struct {
	UserID          uuid.UUID
	DurationMinutes int
	Priority        int
	Energy          string
}

// FindSlotHandler runs the slot engine read-only.
type FindSlotHandler struct {
	tasks    task.Repository
	memory   *memoryApp.Service
	walker   *services.DayWalker
	provider calendarApp.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewFindSlotHandler creates a handler. provider may be nil.
func NewFindSlotHandler(
	tasks task.Repository,
	memory *memoryApp.Service,
	walker *services.DayWalker,
	provider calendarApp.Provider,
	logger *slog.Logger,
) *FindSlotHandler {
	return &FindSlotHandler{
		tasks:    tasks,
		memory:   memory,
		walker:   walker,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle returns the best slot and whether one exists.
func (h *FindSlotHandler) Handle(ctx context.Context, query FindSlotQuery) (domain.Interval, bool, error) {
	memory, err := h.memory.Load(ctx, query.UserID)
	if err != nil {
		return domain.Interval{}, false, err
	}

	active, err := h.tasks.FindActiveByUser(ctx, query.UserID)
	if err != nil {
		return domain.Interval{}, false, err
	}
	var scheduled []*task.Task
	for _, t := range active {
		if t.HasWindow() {
			scheduled = append(scheduled, t)
		}
	}

	now := h.now()
	slot, found := h.walker.FindSlot(services.WalkInput{
		Duration:      value_objects.NewDuration(query.DurationMinutes).Std(),
		Priority:      value_objects.NewPriority(query.Priority),
		Energy:        value_objects.ParseEnergy(query.Energy),
		Memory:        memory,
		ExistingTasks: scheduled,
		External:      h.externalBusy(ctx, memory, now),
		Now:           now,
	})
	return slot, found, nil
}

func (h *FindSlotHandler) externalBusy(ctx context.Context, memory memoryDomain.UserMemory, now time.Time) []calendarApp.BusyInterval {
	if h.provider == nil {
		return nil
	}
	zone, _ := domain.LoadZone(memory.Timezone)
	maxDays := memory.MaxDaysAhead
	if maxDays <= 0 {
		maxDays = services.DefaultMaxDaysAhead
	}
	intervals, err := h.provider.ListBusyIntervals(ctx,
		domain.StartOfDay(now, zone), domain.DayAt(now, zone, maxDays+1, 0))
	if err != nil {
		h.logger.Warn("calendar read failed, previewing without external events",
			slog.String("error", err.Error()))
		return nil
	}
	return intervals
}

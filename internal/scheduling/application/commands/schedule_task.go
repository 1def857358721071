// Package commands implements the scheduling write operations: booking
// pending tasks into slots and the rescheduling cascade.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	notificationsApp "github.com/felixgeelhaar/tempora/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/tempora/internal/notifications/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/application/services"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when the referenced task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// ErrTaskNotSchedulable is returned for completed or cancelled tasks.
var ErrTaskNotSchedulable = errors.New("task is not schedulable")

// ScheduleTaskCommand books one task.
type ScheduleTaskCommand struct {
	TaskID uuid.UUID
}

// PlanDayCommand books every pending task of the user, one at a time,
// sharing a busy-interval accumulator so two tasks from the same request
// cannot land in the same slot.
type PlanDayCommand struct {
	UserID uuid.UUID
}

// PlanResult reports what a planning run did.
type PlanResult struct {
	Scheduled   []*task.Task
	Unscheduled []*task.Task
}

// ScheduleTaskHandler places tasks into free slots.
type ScheduleTaskHandler struct {
	tasks     task.Repository
	memory    *memoryApp.Service
	walker    *services.DayWalker
	provider  calendarApp.Provider
	uow       sharedApp.UnitOfWork
	publisher sharedApp.EventPublisher
	notifier  *notificationsApp.Notifier
	userLock  lock.UserLock
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduleTaskHandler creates a handler. provider may be nil when no
// calendar account is linked; tasks are then scheduled without an
// external event.
func NewScheduleTaskHandler(
	tasks task.Repository,
	memory *memoryApp.Service,
	walker *services.DayWalker,
	provider calendarApp.Provider,
	uow sharedApp.UnitOfWork,
	publisher sharedApp.EventPublisher,
	notifier *notificationsApp.Notifier,
	userLock lock.UserLock,
	logger *slog.Logger,
) *ScheduleTaskHandler {
	return &ScheduleTaskHandler{
		tasks:     tasks,
		memory:    memory,
		walker:    walker,
		provider:  provider,
		uow:       uow,
		publisher: publisher,
		notifier:  notifier,
		userLock:  userLock,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle books a single task. A "no slot" outcome leaves the task
// pending and raises a notification; it is not an error.
func (h *ScheduleTaskHandler) Handle(ctx context.Context, cmd ScheduleTaskCommand) (*task.Task, error) {
	t, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if !t.IsActive() {
		return nil, ErrTaskNotSchedulable
	}

	release, err := h.userLock.Acquire(ctx, t.UserID())
	if err != nil {
		return nil, err
	}
	defer release()

	memory, err := h.memory.Load(ctx, t.UserID())
	if err != nil {
		return nil, err
	}

	now := h.now()
	external := fetchExternal(ctx, h.provider, memory, now, h.logger)

	existing, err := h.scheduledOthers(ctx, t.UserID(), t.ID())
	if err != nil {
		return nil, err
	}

	var accumulator []domain.Interval
	if err := h.placeTask(ctx, t, memory, existing, external, &accumulator, now); err != nil {
		return nil, err
	}
	return t, nil
}

// HandlePlan books all pending tasks for the user in placement order.
func (h *ScheduleTaskHandler) HandlePlan(ctx context.Context, cmd PlanDayCommand) (PlanResult, error) {
	release, err := h.userLock.Acquire(ctx, cmd.UserID)
	if err != nil {
		return PlanResult{}, err
	}
	defer release()

	memory, err := h.memory.Load(ctx, cmd.UserID)
	if err != nil {
		return PlanResult{}, err
	}

	active, err := h.tasks.FindActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return PlanResult{}, fmt.Errorf("loading active tasks: %w", err)
	}

	var pending, scheduled []*task.Task
	for _, t := range active {
		if t.HasWindow() {
			scheduled = append(scheduled, t)
		} else {
			pending = append(pending, t)
		}
	}
	sortForPlacement(pending)

	now := h.now()
	external := fetchExternal(ctx, h.provider, memory, now, h.logger)

	var result PlanResult
	var accumulator []domain.Interval
	for _, t := range pending {
		if err := h.placeTask(ctx, t, memory, scheduled, external, &accumulator, now); err != nil {
			return result, err
		}
		if t.HasWindow() {
			result.Scheduled = append(result.Scheduled, t)
		} else {
			result.Unscheduled = append(result.Unscheduled, t)
		}
	}
	return result, nil
}

// placeTask finds a slot for t and persists the outcome. The chosen
// window is appended to the accumulator so later tasks in the same
// request see it as busy.
func (h *ScheduleTaskHandler) placeTask(
	ctx context.Context,
	t *task.Task,
	memory memoryDomain.UserMemory,
	existing []*task.Task,
	external []calendarApp.BusyInterval,
	accumulator *[]domain.Interval,
	now time.Time,
) error {
	ignore := map[string]struct{}{}
	if t.CalendarEventID() != "" {
		ignore[t.CalendarEventID()] = struct{}{}
	}

	slot, found := h.walker.FindSlot(services.WalkInput{
		Duration:       t.Estimate().Std(),
		Priority:       t.Priority(),
		Energy:         t.Energy(),
		Memory:         memory,
		ExistingTasks:  existing,
		External:       external,
		IgnoreEventIDs: ignore,
		ExtraBusy:      *accumulator,
		Now:            now,
	})
	if !found {
		h.logger.Info("no slot available",
			slog.String("task_id", t.ID().String()),
			slog.String("title", t.Title()))
		h.notifier.Notify(ctx, t.UserID(), notificationsDomain.KindSlotUnavailable,
			fmt.Sprintf("No free slot found for %q within the next days.", t.Title()))
		return nil
	}

	eventID := writeCalendarEvent(ctx, h.provider, t, slot, memory.Timezone, h.logger)

	if err := t.Schedule(slot.Start, slot.End, eventID); err != nil {
		return err
	}
	err := sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.tasks.Save(txCtx, t)
	})
	if err != nil {
		return fmt.Errorf("saving scheduled task: %w", err)
	}

	if err := sharedApp.PublishAll(ctx, h.publisher, t.DomainEvents()); err != nil {
		h.logger.Warn("publishing scheduling events failed", slog.String("error", err.Error()))
	}
	t.ClearDomainEvents()

	*accumulator = append(*accumulator, slot)
	return nil
}

func (h *ScheduleTaskHandler) scheduledOthers(ctx context.Context, userID, exclude uuid.UUID) ([]*task.Task, error) {
	active, err := h.tasks.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active tasks: %w", err)
	}
	var out []*task.Task
	for _, t := range active {
		if t.ID() != exclude && t.HasWindow() {
			out = append(out, t)
		}
	}
	return out, nil
}

// fetchExternal reads busy intervals for the whole search horizon.
// Calendar absence or a read failure degrades to an empty busy set.
func fetchExternal(
	ctx context.Context,
	provider calendarApp.Provider,
	memory memoryDomain.UserMemory,
	now time.Time,
	logger *slog.Logger,
) []calendarApp.BusyInterval {
	if provider == nil {
		return nil
	}

	zone, _ := domain.LoadZone(memory.Timezone)
	maxDays := memory.MaxDaysAhead
	if maxDays <= 0 {
		maxDays = services.DefaultMaxDaysAhead
	}
	from := domain.StartOfDay(now, zone)
	to := domain.DayAt(now, zone, maxDays+1, 0)

	intervals, err := provider.ListBusyIntervals(ctx, from, to)
	if err != nil {
		logger.Warn("calendar read failed, scheduling without external events",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()))
		return nil
	}
	return intervals
}

// writeCalendarEvent creates or updates the task's calendar event.
// Failures are logged and scheduling proceeds without the side effect.
func writeCalendarEvent(
	ctx context.Context,
	provider calendarApp.Provider,
	t *task.Task,
	slot domain.Interval,
	timezone string,
	logger *slog.Logger,
) string {
	if provider == nil {
		return t.CalendarEventID()
	}

	input := calendarApp.EventInput{
		Summary:     t.Title(),
		Description: t.Description(),
		Start:       slot.Start,
		End:         slot.End,
		Timezone:    timezone,
	}

	if eventID := t.CalendarEventID(); eventID != "" {
		if err := provider.UpdateEvent(ctx, eventID, input); err != nil {
			logger.Warn("calendar update failed",
				slog.String("event_id", eventID),
				slog.String("error", err.Error()))
		}
		return eventID
	}

	eventID, err := provider.CreateEvent(ctx, input)
	if err != nil {
		logger.Warn("calendar create failed", slog.String("error", err.Error()))
		return ""
	}
	return eventID
}

// sortForPlacement orders tasks by priority descending, deadline
// ascending with nil deadlines last, then scheduled start (or creation
// time for unscheduled tasks) ascending.
func sortForPlacement(tasks []*task.Task) {
	sort.SliceStable(tasks, func(a, b int) bool {
		ta, tb := tasks[a], tasks[b]
		if ta.Priority() != tb.Priority() {
			return ta.Priority() > tb.Priority()
		}
		da, db := ta.Deadline(), tb.Deadline()
		switch {
		case da != nil && db == nil:
			return true
		case da == nil && db != nil:
			return false
		case da != nil && db != nil && !da.Equal(*db):
			return da.Before(*db)
		}
		sa, sb := placementAnchor(ta), placementAnchor(tb)
		return sa.Before(sb)
	})
}

func placementAnchor(t *task.Task) time.Time {
	if t.HasWindow() {
		return *t.ScheduledStart()
	}
	return t.CreatedAt()
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	notificationsApp "github.com/felixgeelhaar/tempora/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/tempora/internal/notifications/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/application/services"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// MinFreedThreshold is the minimum amount of freed time that makes an
// early completion worth a cascade.
const MinFreedThreshold = 5 * time.Minute

// CascadeCommand re-places the trigger task's remaining same-day peers.
type CascadeCommand struct {
	UserID        uuid.UUID
	TriggerTaskID uuid.UUID
	Trigger       domain.TriggerKind
}

// CascadeHandler runs the rescheduling cascade.
type CascadeHandler struct {
	tasks     task.Repository
	memory    *memoryApp.Service
	walker    *services.DayWalker
	provider  calendarApp.Provider
	changes   domain.Repository
	uow       sharedApp.UnitOfWork
	publisher sharedApp.EventPublisher
	notifier  *notificationsApp.Notifier
	userLock  lock.UserLock
	logger    *slog.Logger
	now       func() time.Time
}

// NewCascadeHandler creates a handler.
func NewCascadeHandler(
	tasks task.Repository,
	memory *memoryApp.Service,
	walker *services.DayWalker,
	provider calendarApp.Provider,
	changes domain.Repository,
	uow sharedApp.UnitOfWork,
	publisher sharedApp.EventPublisher,
	notifier *notificationsApp.Notifier,
	userLock lock.UserLock,
	logger *slog.Logger,
) *CascadeHandler {
	return &CascadeHandler{
		tasks:     tasks,
		memory:    memory,
		walker:    walker,
		provider:  provider,
		changes:   changes,
		uow:       uow,
		publisher: publisher,
		notifier:  notifier,
		userLock:  userLock,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle re-places all still-scheduled future tasks of the current local
// day in priority order. Each re-placed window feeds the next task's
// busy set, so no two cascade placements collide. A task that finds no
// slot keeps its previous window and still occupies it for collision
// purposes. An audit record is written only when at least one window
// actually changed.
func (h *CascadeHandler) Handle(ctx context.Context, cmd CascadeCommand) (*domain.ScheduleChange, error) {
	release, err := h.userLock.Acquire(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	memory, err := h.memory.Load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	zone, _ := domain.LoadZone(memory.Timezone)

	now := h.now()
	endOfDay := domain.EndOfDay(now, zone)

	affected, others, err := h.partitionTasks(ctx, cmd, now, endOfDay)
	if err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return nil, nil
	}
	sortForPlacement(affected)

	external := fetchExternal(ctx, h.provider, memory, now, h.logger)
	ignore := make(map[string]struct{}, len(affected))
	for _, t := range affected {
		if t.CalendarEventID() != "" {
			ignore[t.CalendarEventID()] = struct{}{}
		}
	}

	change := domain.NewScheduleChange(cmd.UserID, cmd.Trigger, cmd.TriggerTaskID)
	var accumulator []domain.Interval

	for _, t := range affected {
		previous := domain.NewInterval(*t.ScheduledStart(), *t.ScheduledEnd())

		slot, found := h.walker.FindSlot(services.WalkInput{
			Duration:       t.Estimate().Std(),
			Priority:       t.Priority(),
			Energy:         t.Energy(),
			Memory:         memory,
			ExistingTasks:  others,
			External:       external,
			IgnoreEventIDs: ignore,
			ExtraBusy:      accumulator,
			Now:            now,
		})
		if !found || (slot.Start.Equal(previous.Start) && slot.End.Equal(previous.End)) {
			// Keep the previous window; it still blocks later tasks.
			accumulator = append(accumulator, previous)
			continue
		}

		if err := h.moveTask(ctx, t, slot, memory.Timezone); err != nil {
			// One task failing must not abort the cascade.
			h.logger.Error("cascade could not move task",
				slog.String("task_id", t.ID().String()),
				slog.String("error", err.Error()))
			accumulator = append(accumulator, previous)
			continue
		}

		accumulator = append(accumulator, slot)
		change.RecordMove(domain.TaskMove{
			TaskID:        t.ID(),
			PreviousStart: previous.Start,
			PreviousEnd:   previous.End,
			NewStart:      slot.Start,
			NewEnd:        slot.End,
			Action:        domain.ActionMoved,
		})
	}

	if !change.HasMoves() {
		return nil, nil
	}

	change.Finalize()
	err = sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.changes.Save(txCtx, change)
	})
	if err != nil {
		return nil, fmt.Errorf("saving schedule change: %w", err)
	}

	if err := sharedApp.PublishAll(ctx, h.publisher, change.DomainEvents()); err != nil {
		h.logger.Warn("publishing schedule change failed", slog.String("error", err.Error()))
	}
	change.ClearDomainEvents()

	h.notifier.Notify(ctx, cmd.UserID, notificationsDomain.KindScheduleChanged,
		fmt.Sprintf("Rescheduled %d task(s) after a %s.", len(change.Moves()), cmd.Trigger))

	return change, nil
}

// partitionTasks splits the user's scheduled tasks into the cascade's
// affected set (future, today, not the trigger) and the untouched rest.
func (h *CascadeHandler) partitionTasks(
	ctx context.Context,
	cmd CascadeCommand,
	now, endOfDay time.Time,
) (affected, others []*task.Task, err error) {
	active, err := h.tasks.FindActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading active tasks: %w", err)
	}

	for _, t := range active {
		if !t.HasWindow() {
			continue
		}
		start := *t.ScheduledStart()
		if t.ID() != cmd.TriggerTaskID && start.After(now) && start.Before(endOfDay) {
			affected = append(affected, t)
		} else {
			others = append(others, t)
		}
	}
	return affected, others, nil
}

func (h *CascadeHandler) moveTask(ctx context.Context, t *task.Task, slot domain.Interval, timezone string) error {
	writeCalendarEvent(ctx, h.provider, t, slot, timezone, h.logger)

	if err := t.Reschedule(slot.Start, slot.End); err != nil {
		return err
	}
	err := sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.tasks.Save(txCtx, t)
	})
	if err != nil {
		return fmt.Errorf("saving rescheduled task: %w", err)
	}

	if err := sharedApp.PublishAll(ctx, h.publisher, t.DomainEvents()); err != nil {
		h.logger.Warn("publishing reschedule events failed", slog.String("error", err.Error()))
	}
	t.ClearDomainEvents()
	return nil
}

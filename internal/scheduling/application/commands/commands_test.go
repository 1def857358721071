package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryApp "github.com/felixgeelhaar/tempora/internal/memory/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	notificationsApp "github.com/felixgeelhaar/tempora/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/tempora/internal/notifications/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/application/services"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fakes ---

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*task.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*task.Task)}
}

func (r *fakeTaskRepo) Save(_ context.Context, t *task.Task) error {
	r.tasks[t.ID()] = t
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.tasks {
		if t.UserID() == userID && t.IsActive() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindScheduledInRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.tasks {
		if t.UserID() != userID || !t.HasWindow() {
			continue
		}
		start := *t.ScheduledStart()
		if !start.Before(from) && start.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.tasks {
		if t.UserID() == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeMemoryRepo struct{}

func (fakeMemoryRepo) Upsert(context.Context, *memoryDomain.Entry) error { return nil }
func (fakeMemoryRepo) FindByUser(context.Context, uuid.UUID) ([]*memoryDomain.Entry, error) {
	return nil, nil
}
func (fakeMemoryRepo) FindByUserAndType(context.Context, uuid.UUID, memoryDomain.MemoryType) ([]*memoryDomain.Entry, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	saved []*notificationsDomain.Notification
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *notificationsDomain.Notification) error {
	r.saved = append(r.saved, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(context.Context, uuid.UUID, int) ([]*notificationsDomain.Notification, error) {
	return r.saved, nil
}

type fakeChangeRepo struct {
	saved []*domain.ScheduleChange
}

func (r *fakeChangeRepo) Save(_ context.Context, c *domain.ScheduleChange) error {
	r.saved = append(r.saved, c)
	return nil
}

func (r *fakeChangeRepo) ListByUser(context.Context, uuid.UUID, int) ([]*domain.ScheduleChange, error) {
	return r.saved, nil
}

type fakeProvider struct {
	busy      []calendarApp.BusyInterval
	listErr   error
	createErr error
	created   int
	updated   []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ListBusyIntervals(context.Context, time.Time, time.Time) ([]calendarApp.BusyInterval, error) {
	return p.busy, p.listErr
}

func (p *fakeProvider) CreateEvent(context.Context, calendarApp.EventInput) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	p.created++
	return uuid.NewString(), nil
}

func (p *fakeProvider) UpdateEvent(_ context.Context, eventID string, _ calendarApp.EventInput) error {
	p.updated = append(p.updated, eventID)
	return nil
}

func (p *fakeProvider) DeleteEvent(context.Context, string) error { return nil }

type noopUnitOfWork struct{}

func (noopUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUnitOfWork) Commit(context.Context) error                       { return nil }
func (noopUnitOfWork) Rollback(context.Context) error                     { return nil }

type capturePublisher struct {
	events []sharedDomain.DomainEvent
}

func (p *capturePublisher) PublishDomainEvent(_ context.Context, event sharedDomain.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

// --- fixtures ---

type fixture struct {
	repo          *fakeTaskRepo
	notifications *fakeNotificationRepo
	changes       *fakeChangeRepo
	provider      *fakeProvider
	schedule      *ScheduleTaskHandler
	cascade       *CascadeHandler
}

func newFixture(provider *fakeProvider, now time.Time) *fixture {
	logger := testLogger()
	repo := newFakeTaskRepo()
	notifications := &fakeNotificationRepo{}
	changes := &fakeChangeRepo{}
	memoryService := memoryApp.NewService(fakeMemoryRepo{}, memoryApp.Defaults{
		Timezone:          "UTC",
		StartHour:         9,
		EndHour:           17,
		MaxExtensionHours: 2,
		BufferMinutes:     5,
		MaxDaysAhead:      7,
	}, logger)
	walker := services.NewDayWalker(logger)
	notifier := notificationsApp.NewNotifier(notifications, logger)
	userLock := lock.NewMemoryUserLock()
	publisher := &capturePublisher{}

	var calProvider calendarApp.Provider
	if provider != nil {
		calProvider = provider
	}

	f := &fixture{repo: repo, notifications: notifications, changes: changes, provider: provider}
	f.schedule = NewScheduleTaskHandler(repo, memoryService, walker, calProvider,
		noopUnitOfWork{}, publisher, notifier, userLock, logger)
	f.schedule.now = func() time.Time { return now }
	f.cascade = NewCascadeHandler(repo, memoryService, walker, calProvider, changes,
		noopUnitOfWork{}, publisher, notifier, userLock, logger)
	f.cascade.now = func() time.Time { return now }
	return f
}

func pendingTask(t *testing.T, repo *fakeTaskRepo, userID uuid.UUID, title string, minutes, priority int) *task.Task {
	t.Helper()
	tk, err := task.NewTask(userID, title)
	require.NoError(t, err)
	require.NoError(t, tk.SetEstimate(value_objects.NewDuration(minutes)))
	require.NoError(t, tk.ChangePriority(value_objects.NewPriority(priority)))
	tk.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), tk))
	return tk
}

func scheduledAt(t *testing.T, repo *fakeTaskRepo, userID uuid.UUID, title string, start time.Time, minutes, priority int) *task.Task {
	t.Helper()
	tk := pendingTask(t, repo, userID, title, minutes, priority)
	require.NoError(t, tk.Schedule(start, start.Add(time.Duration(minutes)*time.Minute), ""))
	tk.ClearDomainEvents()
	return tk
}

// --- tests ---

func TestScheduleTask_BooksEarliestSlot(t *testing.T) {
	userID := uuid.New()
	provider := &fakeProvider{}
	f := newFixture(provider, at(8, 0))
	tk := pendingTask(t, f.repo, userID, "write report", 30, 3)

	scheduled, err := f.schedule.Handle(context.Background(), ScheduleTaskCommand{TaskID: tk.ID()})
	require.NoError(t, err)

	require.True(t, scheduled.HasWindow())
	assert.Equal(t, at(9, 0), *scheduled.ScheduledStart())
	assert.Equal(t, at(9, 30), *scheduled.ScheduledEnd())
	assert.NotEmpty(t, scheduled.CalendarEventID())
	assert.Equal(t, 1, provider.created)
}

func TestScheduleTask_NoSlotLeavesTaskPendingAndNotifies(t *testing.T) {
	userID := uuid.New()
	provider := &fakeProvider{busy: []calendarApp.BusyInterval{
		{EventID: "evt-wall", Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 20)},
	}}
	f := newFixture(provider, at(8, 0))
	tk := pendingTask(t, f.repo, userID, "impossible", 30, 3)

	scheduled, err := f.schedule.Handle(context.Background(), ScheduleTaskCommand{TaskID: tk.ID()})
	require.NoError(t, err)

	assert.False(t, scheduled.HasWindow())
	assert.Equal(t, task.StatusPending, scheduled.Status())
	require.Len(t, f.notifications.saved, 1)
	assert.Equal(t, notificationsDomain.KindSlotUnavailable, f.notifications.saved[0].Kind())
}

func TestScheduleTask_CalendarWriteFailureStillSchedules(t *testing.T) {
	userID := uuid.New()
	provider := &fakeProvider{createErr: errors.New("api down")}
	f := newFixture(provider, at(8, 0))
	tk := pendingTask(t, f.repo, userID, "offline ok", 30, 3)

	scheduled, err := f.schedule.Handle(context.Background(), ScheduleTaskCommand{TaskID: tk.ID()})
	require.NoError(t, err)

	assert.True(t, scheduled.HasWindow())
	assert.Empty(t, scheduled.CalendarEventID())
}

func TestScheduleTask_CalendarReadFailureDegrades(t *testing.T) {
	userID := uuid.New()
	provider := &fakeProvider{listErr: errors.New("timeout")}
	f := newFixture(provider, at(8, 0))
	tk := pendingTask(t, f.repo, userID, "resilient", 30, 3)

	scheduled, err := f.schedule.Handle(context.Background(), ScheduleTaskCommand{TaskID: tk.ID()})
	require.NoError(t, err)
	assert.True(t, scheduled.HasWindow())
}

func TestScheduleTask_WithoutCalendarProvider(t *testing.T) {
	userID := uuid.New()
	f := newFixture(nil, at(8, 0))
	tk := pendingTask(t, f.repo, userID, "no calendar linked", 30, 3)

	scheduled, err := f.schedule.Handle(context.Background(), ScheduleTaskCommand{TaskID: tk.ID()})
	require.NoError(t, err)

	assert.True(t, scheduled.HasWindow())
	assert.Empty(t, scheduled.CalendarEventID())
}

func TestPlanDay_TasksNeverCollide(t *testing.T) {
	userID := uuid.New()
	f := newFixture(&fakeProvider{}, at(8, 0))

	pendingTask(t, f.repo, userID, "first", 30, 3)
	pendingTask(t, f.repo, userID, "second", 30, 3)
	pendingTask(t, f.repo, userID, "third", 45, 3)

	result, err := f.schedule.HandlePlan(context.Background(), PlanDayCommand{UserID: userID})
	require.NoError(t, err)
	require.Len(t, result.Scheduled, 3)
	assert.Empty(t, result.Unscheduled)

	buffer := 5 * time.Minute
	for i, a := range result.Scheduled {
		for _, b := range result.Scheduled[i+1:] {
			padded := domain.NewInterval(*a.ScheduledStart(), *a.ScheduledEnd()).Pad(buffer)
			other := domain.NewInterval(*b.ScheduledStart(), *b.ScheduledEnd())
			assert.False(t, padded.Overlaps(other),
				"tasks %q and %q collide", a.Title(), b.Title())
		}
	}
}

func TestPlanDay_HigherPriorityPlacedFirst(t *testing.T) {
	userID := uuid.New()
	f := newFixture(&fakeProvider{}, at(8, 0))

	pendingTask(t, f.repo, userID, "routine", 30, 2)
	urgent := pendingTask(t, f.repo, userID, "urgent", 30, 5)

	result, err := f.schedule.HandlePlan(context.Background(), PlanDayCommand{UserID: userID})
	require.NoError(t, err)
	require.Len(t, result.Scheduled, 2)

	assert.Equal(t, urgent.ID(), result.Scheduled[0].ID())
	assert.Equal(t, at(9, 0), *result.Scheduled[0].ScheduledStart())
}

func TestCascade_EarlyCompletionPullsTasksForward(t *testing.T) {
	userID := uuid.New()
	f := newFixture(&fakeProvider{}, at(12, 0))

	trigger := scheduledAt(t, f.repo, userID, "finished early", at(11, 0), 60, 3)
	require.NoError(t, trigger.Complete(at(11, 40)))

	low := scheduledAt(t, f.repo, userID, "low prio", at(14, 0), 30, 3)
	high := scheduledAt(t, f.repo, userID, "high prio", at(15, 0), 30, 5)

	change, err := f.cascade.Handle(context.Background(), CascadeCommand{
		UserID:        userID,
		TriggerTaskID: trigger.ID(),
		Trigger:       domain.TriggerEarlyCompletion,
	})
	require.NoError(t, err)
	require.NotNil(t, change)

	// The high-priority task is placed first, directly after now+buffer.
	assert.Equal(t, at(12, 5), *high.ScheduledStart())
	assert.True(t, low.ScheduledStart().Before(at(14, 0)))

	// Re-placed windows never collide once buffer-padded.
	highWindow := domain.NewInterval(*high.ScheduledStart(), *high.ScheduledEnd()).Pad(5 * time.Minute)
	lowWindow := domain.NewInterval(*low.ScheduledStart(), *low.ScheduledEnd())
	assert.False(t, highWindow.Overlaps(lowWindow))

	require.Len(t, f.changes.saved, 1)
	assert.Len(t, f.changes.saved[0].Moves(), 2)
	require.Len(t, f.notifications.saved, 1)
	assert.Equal(t, notificationsDomain.KindScheduleChanged, f.notifications.saved[0].Kind())
}

func TestCascade_NoImprovementEmitsNoAudit(t *testing.T) {
	userID := uuid.New()
	f := newFixture(&fakeProvider{}, at(8, 0))

	trigger := scheduledAt(t, f.repo, userID, "changed", at(13, 0), 30, 3)
	// Already at the earliest possible slot.
	scheduledAt(t, f.repo, userID, "optimal", at(9, 0), 30, 3)

	change, err := f.cascade.Handle(context.Background(), CascadeCommand{
		UserID:        userID,
		TriggerTaskID: trigger.ID(),
		Trigger:       domain.TriggerPriorityChange,
	})
	require.NoError(t, err)
	assert.Nil(t, change)
	assert.Empty(t, f.changes.saved)
	assert.Empty(t, f.notifications.saved)
}

func TestCascade_LeavesTomorrowAlone(t *testing.T) {
	userID := uuid.New()
	f := newFixture(&fakeProvider{}, at(12, 0))

	trigger := scheduledAt(t, f.repo, userID, "trigger", at(10, 0), 30, 3)
	tomorrow := at(14, 0).AddDate(0, 0, 1)
	future := scheduledAt(t, f.repo, userID, "tomorrow", tomorrow, 30, 3)

	_, err := f.cascade.Handle(context.Background(), CascadeCommand{
		UserID:        userID,
		TriggerTaskID: trigger.ID(),
		Trigger:       domain.TriggerDeadlineChange,
	})
	require.NoError(t, err)

	assert.Equal(t, tomorrow, *future.ScheduledStart())
}

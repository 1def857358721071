package task

import (
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrTaskCancelled       = errors.New("task is cancelled")
	ErrInvalidWindow       = errors.New("scheduled end must be after scheduled start")
	ErrWindowMismatch      = errors.New("scheduled window must match the estimated duration")
	ErrNotScheduled        = errors.New("task has no scheduled window")
)

// Status represents the task lifecycle state.
type Status string

const (
	// StatusPending is a submitted task that has no scheduled window yet,
	// either because scheduling has not run or because no slot was found.
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Task is a unit of work the engine books into the user's day.
//
// Invariant: scheduledStart and scheduledEnd are either both nil or both
// set, and when set the window length equals the estimate.
type Task struct {
	domain.BaseAggregateRoot
	userID          uuid.UUID
	title           string
	description     string
	category        string
	status          Status
	priority        value_objects.Priority
	estimate        value_objects.Duration
	energy          value_objects.Energy
	deadline        *time.Time
	scheduledStart  *time.Time
	scheduledEnd    *time.Time
	calendarEventID string
	completedAt     *time.Time
}

// NewTask creates a pending task with default estimate, priority and energy.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		status:            StatusPending,
		priority:          value_objects.PriorityMedium,
		estimate:          value_objects.NewDuration(30),
		energy:            value_objects.EnergyMedium,
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), userID, title))

	return t, nil
}

// Getters

func (t *Task) UserID() uuid.UUID                  { return t.userID }
func (t *Task) Title() string                      { return t.title }
func (t *Task) Description() string                { return t.description }
func (t *Task) Category() string                   { return t.category }
func (t *Task) Status() Status                     { return t.status }
func (t *Task) Priority() value_objects.Priority   { return t.priority }
func (t *Task) Estimate() value_objects.Duration   { return t.estimate }
func (t *Task) Energy() value_objects.Energy       { return t.energy }
func (t *Task) Deadline() *time.Time               { return t.deadline }
func (t *Task) ScheduledStart() *time.Time         { return t.scheduledStart }
func (t *Task) ScheduledEnd() *time.Time           { return t.scheduledEnd }
func (t *Task) CalendarEventID() string            { return t.calendarEventID }
func (t *Task) CompletedAt() *time.Time            { return t.completedAt }

// IsActive reports whether the task still competes for calendar time.
func (t *Task) IsActive() bool {
	return t.status == StatusPending || t.status == StatusScheduled || t.status == StatusInProgress
}

// HasWindow reports whether the task currently holds a scheduled window.
func (t *Task) HasWindow() bool {
	return t.scheduledStart != nil && t.scheduledEnd != nil
}

func (t *Task) ensureMutable() error {
	switch t.status {
	case StatusCompleted:
		return ErrTaskAlreadyComplete
	case StatusCancelled:
		return ErrTaskCancelled
	default:
		return nil
	}
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.description = strings.TrimSpace(description)
	t.Touch()
	return nil
}

// SetCategory updates the task category.
func (t *Task) SetCategory(category string) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.category = strings.TrimSpace(strings.ToLower(category))
	t.Touch()
	return nil
}

// SetEstimate updates the estimated duration. It does not resize an
// existing window; callers reschedule after changing the estimate.
func (t *Task) SetEstimate(estimate value_objects.Duration) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.estimate = estimate
	t.Touch()
	return nil
}

// SetEnergy updates the energy requirement.
func (t *Task) SetEnergy(energy value_objects.Energy) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.energy = energy
	t.Touch()
	return nil
}

// SetInitialPriority records the assessed priority at creation time. It
// raises no change event; ChangePriority is for mutating an existing
// task.
func (t *Task) SetInitialPriority(priority value_objects.Priority) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.priority = priority
	t.Touch()
	return nil
}

// SetInitialDeadline records the deadline at creation time. It raises no
// change event; ChangeDeadline is for mutating an existing task.
func (t *Task) SetInitialDeadline(deadline *time.Time) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.deadline = deadline
	t.Touch()
	return nil
}

// ChangePriority updates the priority, recording a change event when the
// value actually moves.
func (t *Task) ChangePriority(priority value_objects.Priority) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if priority == t.priority {
		return nil
	}
	old := t.priority
	t.priority = priority
	t.Touch()
	t.AddDomainEvent(NewTaskPriorityChanged(t.ID(), t.userID, old.Int(), priority.Int()))
	return nil
}

// ChangeDeadline updates the deadline, recording a change event when the
// value actually moves.
func (t *Task) ChangeDeadline(deadline *time.Time) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if equalTimePtr(t.deadline, deadline) {
		return nil
	}
	t.deadline = deadline
	t.Touch()
	t.AddDomainEvent(NewTaskDeadlineChanged(t.ID(), t.userID, deadline))
	return nil
}

// Schedule books the task into a window. The window must be exactly as
// long as the estimate.
func (t *Task) Schedule(start, end time.Time, calendarEventID string) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if !end.After(start) {
		return ErrInvalidWindow
	}
	if end.Sub(start) != t.estimate.Std() {
		return ErrWindowMismatch
	}

	t.scheduledStart = &start
	t.scheduledEnd = &end
	t.calendarEventID = calendarEventID
	if t.status == StatusPending {
		t.status = StatusScheduled
	}
	t.Touch()

	t.AddDomainEvent(NewTaskScheduled(t.ID(), t.userID, start, end, calendarEventID))

	return nil
}

// Reschedule moves the task to a new window of the same length.
func (t *Task) Reschedule(start, end time.Time) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if !t.HasWindow() {
		return ErrNotScheduled
	}
	if !end.After(start) {
		return ErrInvalidWindow
	}
	if end.Sub(start) != t.estimate.Std() {
		return ErrWindowMismatch
	}

	oldStart := *t.scheduledStart
	oldEnd := *t.scheduledEnd
	t.scheduledStart = &start
	t.scheduledEnd = &end
	t.Touch()

	t.AddDomainEvent(NewTaskRescheduled(t.ID(), t.userID, oldStart, oldEnd, start, end))

	return nil
}

// ClearSchedule releases the task's window, returning it to pending.
func (t *Task) ClearSchedule() error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.scheduledStart = nil
	t.scheduledEnd = nil
	t.calendarEventID = ""
	if t.status == StatusScheduled || t.status == StatusInProgress {
		t.status = StatusPending
	}
	t.Touch()
	return nil
}

// Start marks the task as in progress.
func (t *Task) Start() error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if t.status == StatusInProgress {
		return nil // idempotent
	}
	t.status = StatusInProgress
	t.Touch()
	return nil
}

// Complete marks the task as completed at now. The event carries the
// scheduled window so that downstream listeners can measure freed time.
func (t *Task) Complete(now time.Time) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}

	completedAt := now.UTC()
	t.status = StatusCompleted
	t.completedAt = &completedAt
	t.Touch()

	t.AddDomainEvent(NewTaskCompleted(t.ID(), t.userID, completedAt, t.scheduledStart, t.scheduledEnd))

	return nil
}

// Cancel marks the task as cancelled.
func (t *Task) Cancel() error {
	if t.status == StatusCancelled {
		return nil // idempotent
	}
	if t.status == StatusCompleted {
		return ErrTaskAlreadyComplete
	}
	t.status = StatusCancelled
	t.Touch()
	t.AddDomainEvent(NewTaskCancelled(t.ID(), t.userID))
	return nil
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Rehydrate recreates a task from persisted state.
func Rehydrate(
	id uuid.UUID,
	userID uuid.UUID,
	title, description, category string,
	status Status,
	priority value_objects.Priority,
	estimate value_objects.Duration,
	energy value_objects.Energy,
	deadline, scheduledStart, scheduledEnd, completedAt *time.Time,
	calendarEventID string,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		userID:            userID,
		title:             title,
		description:       description,
		category:          category,
		status:            status,
		priority:          priority,
		estimate:          estimate,
		energy:            energy,
		deadline:          deadline,
		scheduledStart:    scheduledStart,
		scheduledEnd:      scheduledEnd,
		calendarEventID:   calendarEventID,
		completedAt:       completedAt,
	}
}

package task

import (
	"time"

	"github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "task"

// Routing keys for task events.
const (
	RoutingKeyTaskCreated         = "task.created"
	RoutingKeyTaskScheduled       = "task.scheduled"
	RoutingKeyTaskRescheduled     = "task.rescheduled"
	RoutingKeyTaskCompleted       = "task.completed"
	RoutingKeyTaskCancelled       = "task.cancelled"
	RoutingKeyTaskPriorityChanged = "task.priority_changed"
	RoutingKeyTaskDeadlineChanged = "task.deadline_changed"
)

// TaskCreated is raised when a task is submitted.
type TaskCreated struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
	Title  string    `json:"title"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID, userID uuid.UUID, title string) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskCreated, userID),
		TaskID:    taskID,
		Title:     title,
	}
}

// TaskScheduled is raised when a task is booked into a window.
type TaskScheduled struct {
	domain.BaseEvent
	TaskID          uuid.UUID `json:"task_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
}

// NewTaskScheduled creates a TaskScheduled event.
func NewTaskScheduled(taskID, userID uuid.UUID, start, end time.Time, calendarEventID string) *TaskScheduled {
	return &TaskScheduled{
		BaseEvent:       domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskScheduled, userID),
		TaskID:          taskID,
		Start:           start,
		End:             end,
		CalendarEventID: calendarEventID,
	}
}

// TaskRescheduled is raised when a task moves to a new window.
type TaskRescheduled struct {
	domain.BaseEvent
	TaskID   uuid.UUID `json:"task_id"`
	OldStart time.Time `json:"old_start"`
	OldEnd   time.Time `json:"old_end"`
	NewStart time.Time `json:"new_start"`
	NewEnd   time.Time `json:"new_end"`
}

// NewTaskRescheduled creates a TaskRescheduled event.
func NewTaskRescheduled(taskID, userID uuid.UUID, oldStart, oldEnd, newStart, newEnd time.Time) *TaskRescheduled {
	return &TaskRescheduled{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskRescheduled, userID),
		TaskID:    taskID,
		OldStart:  oldStart,
		OldEnd:    oldEnd,
		NewStart:  newStart,
		NewEnd:    newEnd,
	}
}

// TaskCompleted is raised when a task finishes. The scheduled window is
// included so listeners can compute how much time the completion freed.
type TaskCompleted struct {
	domain.BaseEvent
	TaskID         uuid.UUID  `json:"task_id"`
	CompletedAt    time.Time  `json:"completed_at"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID, userID uuid.UUID, completedAt time.Time, scheduledStart, scheduledEnd *time.Time) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent:      domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskCompleted, userID),
		TaskID:         taskID,
		CompletedAt:    completedAt,
		ScheduledStart: scheduledStart,
		ScheduledEnd:   scheduledEnd,
	}
}

// TaskCancelled is raised when a task is cancelled.
type TaskCancelled struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
}

// NewTaskCancelled creates a TaskCancelled event.
func NewTaskCancelled(taskID, userID uuid.UUID) *TaskCancelled {
	return &TaskCancelled{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskCancelled, userID),
		TaskID:    taskID,
	}
}

// TaskPriorityChanged is raised when a task's priority moves.
type TaskPriorityChanged struct {
	domain.BaseEvent
	TaskID      uuid.UUID `json:"task_id"`
	OldPriority int       `json:"old_priority"`
	NewPriority int       `json:"new_priority"`
}

// NewTaskPriorityChanged creates a TaskPriorityChanged event.
func NewTaskPriorityChanged(taskID, userID uuid.UUID, oldPriority, newPriority int) *TaskPriorityChanged {
	return &TaskPriorityChanged{
		BaseEvent:   domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskPriorityChanged, userID),
		TaskID:      taskID,
		OldPriority: oldPriority,
		NewPriority: newPriority,
	}
}

// TaskDeadlineChanged is raised when a task's deadline moves.
type TaskDeadlineChanged struct {
	domain.BaseEvent
	TaskID   uuid.UUID  `json:"task_id"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// NewTaskDeadlineChanged creates a TaskDeadlineChanged event.
func NewTaskDeadlineChanged(taskID, userID uuid.UUID, deadline *time.Time) *TaskDeadlineChanged {
	return &TaskDeadlineChanged{
		BaseEvent: domain.NewBaseEvent(taskID, aggregateType, RoutingKeyTaskDeadlineChanged, userID),
		TaskID:    taskID,
		Deadline:  deadline,
	}
}

// Package subscribers reacts to task events by triggering the
// rescheduling cascade. Routing through the event bus keeps the tasks
// context unaware of scheduling.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempora/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// TaskEventSubscriber turns qualifying task events into cascades.
type TaskEventSubscriber struct {
	cascade *commands.CascadeHandler
	logger  *slog.Logger
}

// NewTaskEventSubscriber creates a subscriber.
func NewTaskEventSubscriber(cascade *commands.CascadeHandler, logger *slog.Logger) *TaskEventSubscriber {
	return &TaskEventSubscriber{cascade: cascade, logger: logger}
}

// RoutingKeys lists the events the subscriber consumes.
func (s *TaskEventSubscriber) RoutingKeys() []string {
	return []string{
		task.RoutingKeyTaskCompleted,
		task.RoutingKeyTaskPriorityChanged,
		task.RoutingKeyTaskDeadlineChanged,
	}
}

type completedPayload struct {
	TaskID         uuid.UUID  `json:"task_id"`
	CompletedAt    time.Time  `json:"completed_at"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
}

// Handle dispatches one consumed event.
func (s *TaskEventSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case task.RoutingKeyTaskCompleted:
		return s.onCompleted(ctx, event)
	case task.RoutingKeyTaskPriorityChanged:
		return s.runCascade(ctx, event, domain.TriggerPriorityChange)
	case task.RoutingKeyTaskDeadlineChanged:
		return s.runCascade(ctx, event, domain.TriggerDeadlineChange)
	default:
		return nil
	}
}

// onCompleted triggers a cascade only when the completion freed at least
// the minimum threshold of scheduled time.
func (s *TaskEventSubscriber) onCompleted(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload completedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decoding completion payload: %w", err)
	}
	if payload.ScheduledEnd == nil {
		return nil
	}

	freed := payload.ScheduledEnd.Sub(payload.CompletedAt)
	if freed < commands.MinFreedThreshold {
		s.logger.Debug("completion freed too little time for a cascade",
			slog.String("task_id", payload.TaskID.String()),
			slog.Duration("freed", freed))
		return nil
	}

	return s.runCascade(ctx, event, domain.TriggerEarlyCompletion)
}

func (s *TaskEventSubscriber) runCascade(ctx context.Context, event *eventbus.ConsumedEvent, trigger domain.TriggerKind) error {
	_, err := s.cascade.Handle(ctx, commands.CascadeCommand{
		UserID:        event.UserID,
		TriggerTaskID: event.AggregateID,
		Trigger:       trigger,
	})
	return err
}

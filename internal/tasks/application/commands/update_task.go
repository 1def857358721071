package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

// UpdateTaskCommand mutates a task. Nil pointers leave the corresponding
// field untouched. ClearDeadline removes an existing deadline and wins
// over Deadline when both are set.
type UpdateTaskCommand struct {
	TaskID          uuid.UUID
	Title           *string
	Description     *string
	Category        *string
	EstimateMinutes *int
	Energy          *string
	Priority        *int
	Deadline        *time.Time
	ClearDeadline   bool
}

// UpdateTaskHandler handles task mutation. Priority and deadline changes
// publish change events that the rescheduling subscriber reacts to.
type UpdateTaskHandler struct {
	repo      task.Repository
	uow       sharedApp.UnitOfWork
	publisher sharedApp.EventPublisher
	logger    *slog.Logger
}

// NewUpdateTaskHandler creates a handler.
func NewUpdateTaskHandler(
	repo task.Repository,
	uow sharedApp.UnitOfWork,
	publisher sharedApp.EventPublisher,
	logger *slog.Logger,
) *UpdateTaskHandler {
	return &UpdateTaskHandler{repo: repo, uow: uow, publisher: publisher, logger: logger}
}

// Handle applies the mutation.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*task.Task, error) {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}

	if err := h.apply(t, cmd); err != nil {
		return nil, err
	}

	err = sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.repo.Save(txCtx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}

	if err := sharedApp.PublishAll(ctx, h.publisher, t.DomainEvents()); err != nil {
		h.logger.Warn("publishing task events failed", slog.String("error", err.Error()))
	}
	t.ClearDomainEvents()

	return t, nil
}

func (h *UpdateTaskHandler) apply(t *task.Task, cmd UpdateTaskCommand) error {
	if cmd.Title != nil {
		if err := t.SetTitle(*cmd.Title); err != nil {
			return err
		}
	}
	if cmd.Description != nil {
		if err := t.SetDescription(*cmd.Description); err != nil {
			return err
		}
	}
	if cmd.Category != nil {
		if err := t.SetCategory(*cmd.Category); err != nil {
			return err
		}
	}
	if cmd.EstimateMinutes != nil {
		estimate := value_objects.NewDuration(*cmd.EstimateMinutes)
		resized := t.HasWindow() && estimate.Minutes() != t.Estimate().Minutes()
		if err := t.SetEstimate(estimate); err != nil {
			return err
		}
		// A resized task no longer fits its old window; release it so
		// planning books a window of the new length.
		if resized {
			if err := t.ClearSchedule(); err != nil {
				return err
			}
		}
	}
	if cmd.Energy != nil {
		if err := t.SetEnergy(value_objects.ParseEnergy(*cmd.Energy)); err != nil {
			return err
		}
	}
	if cmd.Priority != nil {
		if err := t.ChangePriority(value_objects.NewPriority(*cmd.Priority)); err != nil {
			return err
		}
	}
	if cmd.ClearDeadline {
		return t.ChangeDeadline(nil)
	}
	if cmd.Deadline != nil {
		return t.ChangeDeadline(cmd.Deadline)
	}
	return nil
}

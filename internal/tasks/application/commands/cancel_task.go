package commands

import (
	"context"
	"fmt"
	"log/slog"

	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// CancelTaskCommand cancels a task.
type CancelTaskCommand struct {
	TaskID uuid.UUID
}

// CancelTaskHandler handles task cancellation.
type CancelTaskHandler struct {
	repo      task.Repository
	uow       sharedApp.UnitOfWork
	publisher sharedApp.EventPublisher
	logger    *slog.Logger
}

// NewCancelTaskHandler creates a handler.
func NewCancelTaskHandler(
	repo task.Repository,
	uow sharedApp.UnitOfWork,
	publisher sharedApp.EventPublisher,
	logger *slog.Logger,
) *CancelTaskHandler {
	return &CancelTaskHandler{repo: repo, uow: uow, publisher: publisher, logger: logger}
}

// Handle cancels the task.
func (h *CancelTaskHandler) Handle(ctx context.Context, cmd CancelTaskCommand) error {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("loading task: %w", err)
	}
	if t == nil {
		return ErrTaskNotFound
	}

	if err := t.Cancel(); err != nil {
		return err
	}

	err = sharedApp.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.repo.Save(txCtx, t)
	})
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}

	if err := sharedApp.PublishAll(ctx, h.publisher, t.DomainEvents()); err != nil {
		h.logger.Warn("publishing task events failed", slog.String("error", err.Error()))
	}
	t.ClearDomainEvents()

	return nil
}

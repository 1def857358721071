package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when the referenced task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// CompleteTaskCommand marks a task as done.
type CompleteTaskCommand struct {
	TaskID uuid.UUID
}

// CompleteTaskHandler handles task completion. The published completion
// event carries the scheduled window; the rescheduling subscriber uses
// it to decide whether enough time was freed to trigger a cascade.
type CompleteTaskHandler struct {
	repo      task.Repository
	uow       sharedApp.UnitOfWork
	publisher sharedApp.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewCompleteTaskHandler creates a handler.
func NewCompleteTaskHandler(
	repo task.Repository,
	uow sharedApp.UnitOfWork,
	publisher sharedApp.EventPublisher,
	logger *slog.Logger,
) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		repo:      repo,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle completes the task.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*task.Task, error) {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}

	if err := t.Complete(h.now()); err != nil {
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

// Package commands implements the task write operations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempora/internal/assistant"
	sharedApp "github.com/felixgeelhaar/tempora/internal/shared/application"
	"github.com/felixgeelhaar/tempora/internal/tasks/application/services"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

// ErrNothingToCreate is returned when neither structured fields nor
// free-form text were provided.
var ErrNothingToCreate = errors.New("either a title or free-form text is required")

// CreateTaskCommand creates a task either from structured fields or from
// free-form text the assistant parses.
type CreateTaskCommand struct {
	UserID uuid.UUID
	// Text is free-form input ("prep the client deck by Friday, 1h").
	// It is parsed when Title is empty.
	Text            string
	Title           string
	Description     string
	Category        string
	EstimateMinutes int
	Energy          string
	Deadline        *time.Time
}

// CreateTaskHandler handles task creation.
type CreateTaskHandler struct {
	repo      task.Repository
	uow       sharedApp.UnitOfWork
	assessor  *services.PriorityAssessor
	assistant assistant.Assistant
	publisher sharedApp.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewCreateTaskHandler creates a handler. assistant may be nil; free-form
// text then falls back to the literal-title heuristic.
func NewCreateTaskHandler(
	repo task.Repository,
	uow sharedApp.UnitOfWork,
	assessor *services.PriorityAssessor,
	a assistant.Assistant,
	publisher sharedApp.EventPublisher,
	logger *slog.Logger,
) *CreateTaskHandler {
	return &CreateTaskHandler{
		repo:      repo,
		uow:       uow,
		assessor:  assessor,
		assistant: a,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle creates and persists the task, returning it with its assessed
// priority. The task is not scheduled here; planning is a separate step.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	if cmd.Title == "" && cmd.Text == "" {
		return nil, ErrNothingToCreate
	}

	if cmd.Title == "" {
		h.parseText(ctx, &cmd)
	}

	t, err := task.NewTask(cmd.UserID, cmd.Title)
	if err != nil {
		return nil, err
	}
	if err := h.applyFields(t, cmd); err != nil {
		return nil, err
	}

	existing, err := h.repo.FindActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading active tasks: %w", err)
	}

	priority := h.assessor.Assess(ctx, services.AssessInput{
		Title:         t.Title(),
		Description:   t.Description(),
		Category:      t.Category(),
		Deadline:      t.Deadline(),
		ExistingTasks: existing,
		Now:           h.now(),
	})
	if err := t.SetInitialPriority(priority); err != nil {
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

// parseText fills the command's structured fields from free-form text.
// Any assistant failure falls back to using the text verbatim as title
// with default estimate and energy.
func (h *CreateTaskHandler) parseText(ctx context.Context, cmd *CreateTaskCommand) {
	if h.assistant != nil {
		parsed, err := h.assistant.ParseTask(ctx, cmd.Text)
		if err == nil && parsed != nil && parsed.Title != "" {
			cmd.Title = parsed.Title
			cmd.Description = parsed.Description
			cmd.Category = parsed.Category
			cmd.EstimateMinutes = parsed.EstimateMinutes
			cmd.Energy = parsed.Energy
			cmd.Deadline = parsed.Deadline
			return
		}
		if err != nil {
			h.logger.Debug("assistant parse failed, using text as title",
				slog.String("error", err.Error()))
		}
	}
	cmd.Title = cmd.Text
}

func (h *CreateTaskHandler) applyFields(t *task.Task, cmd CreateTaskCommand) error {
	if err := t.SetDescription(cmd.Description); err != nil {
		return err
	}
	if err := t.SetCategory(cmd.Category); err != nil {
		return err
	}
	if cmd.EstimateMinutes > 0 {
		if err := t.SetEstimate(value_objects.NewDuration(cmd.EstimateMinutes)); err != nil {
			return err
		}
	}
	if cmd.Energy != "" {
		if err := t.SetEnergy(value_objects.ParseEnergy(cmd.Energy)); err != nil {
			return err
		}
	}
	if cmd.Deadline != nil {
		if err := t.SetInitialDeadline(cmd.Deadline); err != nil {
			return err
		}
	}
	return nil
}

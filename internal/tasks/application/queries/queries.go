// Package queries implements the task read operations.
package queries

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when the referenced task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// GetTaskHandler loads one task by ID.
type GetTaskHandler struct {
	repo task.Repository
}

// NewGetTaskHandler creates a handler.
func NewGetTaskHandler(repo task.Repository) *GetTaskHandler {
	return &GetTaskHandler{repo: repo}
}

// Handle returns the task or ErrTaskNotFound.
func (h *GetTaskHandler) Handle(ctx context.Context, taskID uuid.UUID) (*task.Task, error) {
	t, err := h.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// ListTasksQuery filters the task list.
type ListTasksQuery struct {
	UserID     uuid.UUID
	ActiveOnly bool
}

// ListTasksHandler lists a user's tasks.
type ListTasksHandler struct {
	repo task.Repository
}

// NewListTasksHandler creates a handler.
func NewListTasksHandler(repo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{repo: repo}
}

// Handle returns the user's tasks.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]*task.Task, error) {
	if query.ActiveOnly {
		return h.repo.FindActiveByUser(ctx, query.UserID)
	}
	return h.repo.ListByUser(ctx, query.UserID)
}

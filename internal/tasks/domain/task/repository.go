package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists tasks. Finders return (nil, nil) when nothing
// matches an ID lookup.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// FindActiveByUser returns pending, scheduled and in-progress tasks.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	// FindScheduledInRange returns tasks whose scheduled start falls in
	// [from, to), ordered by scheduled start.
	FindScheduledInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)
}

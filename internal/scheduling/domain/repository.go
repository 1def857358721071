package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists schedule change audit records.
type Repository interface {
	Save(ctx context.Context, change *ScheduleChange) error
	// ListByUser returns the most recent changes first, at most limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*ScheduleChange, error)
}

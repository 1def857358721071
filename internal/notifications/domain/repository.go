package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists notifications.
type Repository interface {
	Save(ctx context.Context, notification *Notification) error
	// ListByUser returns the most recent notifications first, at most limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
}

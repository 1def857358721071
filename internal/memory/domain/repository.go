package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists memory entries with the uniqueness constraint
// (user, memory_type, key).
type Repository interface {
	// Upsert inserts the entry or replaces the value of an existing one.
	Upsert(ctx context.Context, entry *Entry) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Entry, error)
	FindByUserAndType(ctx context.Context, userID uuid.UUID, memoryType MemoryType) ([]*Entry, error)
}

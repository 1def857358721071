package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/memory/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMemoryRepository implements domain.Repository on Postgres.
type PostgresMemoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMemoryRepository creates a Postgres memory repository.
func NewPostgresMemoryRepository(pool *pgxpool.Pool) *PostgresMemoryRepository {
	return &PostgresMemoryRepository{pool: pool}
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresMemoryRepository) executor(ctx context.Context) pgxExecutor {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.pool
}

// Upsert inserts the entry or replaces the value of an existing one.
func (r *PostgresMemoryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	_, err := r.executor(ctx).Exec(ctx,
		`INSERT INTO memory_entries (id, user_id, memory_type, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, memory_type, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		entry.ID(), entry.UserID(), string(entry.Type()), entry.Key(), entry.Value(),
		entry.CreatedAt().UTC(), entry.UpdatedAt().UTC())
	if err != nil {
		return fmt.Errorf("upserting memory entry: %w", err)
	}
	return nil
}

// FindByUser returns all entries for the user ordered by type and key.
func (r *PostgresMemoryRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	return r.query(ctx,
		`SELECT id, user_id, memory_type, key, value, created_at, updated_at
		FROM memory_entries WHERE user_id = $1 ORDER BY memory_type, key`, userID)
}

// FindByUserAndType returns entries of one type for the user.
func (r *PostgresMemoryRepository) FindByUserAndType(ctx context.Context, userID uuid.UUID, memoryType domain.MemoryType) ([]*domain.Entry, error) {
	return r.query(ctx,
		`SELECT id, user_id, memory_type, key, value, created_at, updated_at
		FROM memory_entries WHERE user_id = $1 AND memory_type = $2 ORDER BY key`,
		userID, string(memoryType))
}

func (r *PostgresMemoryRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying memory entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var (
			id, userID           uuid.UUID
			memoryType, key, val string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &userID, &memoryType, &key, &val, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning memory entry: %w", err)
		}
		entries = append(entries, domain.RehydrateEntry(
			id, userID, domain.MemoryType(memoryType), key, val, createdAt, updatedAt))
	}
	return entries, rows.Err()
}

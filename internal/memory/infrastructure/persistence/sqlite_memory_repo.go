// Package persistence provides SQLite-backed storage for memory entries.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/memory/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteMemoryRepository implements domain.Repository on SQLite.
type SQLiteMemoryRepository struct {
	db *sql.DB
}

// NewSQLiteMemoryRepository creates a SQLite memory repository.
func NewSQLiteMemoryRepository(db *sql.DB) *SQLiteMemoryRepository {
	return &SQLiteMemoryRepository{db: db}
}

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteMemoryRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Upsert inserts the entry or replaces the value of the existing
// (user, memory_type, key) row.
func (r *SQLiteMemoryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	query := `INSERT INTO memory_entries (id, user_id, memory_type, key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, memory_type, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := r.executor(ctx).ExecContext(ctx, query,
		entry.ID().String(),
		entry.UserID().String(),
		string(entry.Type()),
		entry.Key(),
		entry.Value(),
		entry.CreatedAt().UTC().Format(time.RFC3339Nano),
		entry.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting memory entry: %w", err)
	}
	return nil
}

// FindByUser returns all entries for the user ordered by type and key.
func (r *SQLiteMemoryRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	query := `SELECT id, user_id, memory_type, key, value, created_at, updated_at
		FROM memory_entries WHERE user_id = ? ORDER BY memory_type, key`
	return r.query(ctx, query, userID.String())
}

// FindByUserAndType returns entries of one type for the user.
func (r *SQLiteMemoryRepository) FindByUserAndType(ctx context.Context, userID uuid.UUID, memoryType domain.MemoryType) ([]*domain.Entry, error) {
	query := `SELECT id, user_id, memory_type, key, value, created_at, updated_at
		FROM memory_entries WHERE user_id = ? AND memory_type = ? ORDER BY key`
	return r.query(ctx, query, userID.String(), string(memoryType))
}

func (r *SQLiteMemoryRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying memory entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (*domain.Entry, error) {
	var (
		idStr, userIDStr, memoryType, key, value string
		createdAtStr, updatedAtStr               string
	)
	if err := rows.Scan(&idStr, &userIDStr, &memoryType, &key, &value, &createdAtStr, &updatedAtStr); err != nil {
		return nil, fmt.Errorf("scanning memory entry: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing memory entry id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parsing memory entry user id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing memory entry created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing memory entry updated_at: %w", err)
	}

	return domain.RehydrateEntry(id, userID, domain.MemoryType(memoryType), key, value, createdAt, updatedAt), nil
}

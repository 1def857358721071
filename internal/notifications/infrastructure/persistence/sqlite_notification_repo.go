// Package persistence provides SQLite-backed notification storage.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/notifications/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteNotificationRepository implements domain.Repository on SQLite.
type SQLiteNotificationRepository struct {
	db *sql.DB
}

// NewSQLiteNotificationRepository creates a SQLite notification repository.
func NewSQLiteNotificationRepository(db *sql.DB) *SQLiteNotificationRepository {
	return &SQLiteNotificationRepository{db: db}
}

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteNotificationRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save inserts or updates the notification row.
func (r *SQLiteNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	_, err := r.executor(ctx).ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET read = excluded.read`,
		n.ID().String(),
		n.UserID().String(),
		string(n.Kind()),
		n.Message(),
		n.IsRead(),
		n.CreatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving notification: %w", err)
	}
	return nil
}

// ListByUser returns the most recent notifications first.
func (r *SQLiteNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := r.executor(ctx).QueryContext(ctx,
		`SELECT id, user_id, kind, message, read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var (
			idStr, userIDStr, kind, message, createdAtStr string
			read                                          bool
		)
		if err := rows.Scan(&idStr, &userIDStr, &kind, &message, &read, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing notification id: %w", err)
		}
		owner, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parsing notification user id: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing notification created_at: %w", err)
		}
		notifications = append(notifications, domain.RehydrateNotification(
			id, owner, domain.Kind(kind), message, read, createdAt, createdAt))
	}
	return notifications, rows.Err()
}

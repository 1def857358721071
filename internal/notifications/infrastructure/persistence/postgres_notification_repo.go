package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/notifications/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresNotificationRepository implements domain.Repository on Postgres.
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a Postgres notification repository.
func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresNotificationRepository) executor(ctx context.Context) pgxExecutor {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.pool
}

// Save inserts or updates the notification row.
func (r *PostgresNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	_, err := r.executor(ctx).Exec(ctx,
		`INSERT INTO notifications (id, user_id, kind, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET read = EXCLUDED.read`,
		n.ID(), n.UserID(), string(n.Kind()), n.Message(), n.IsRead(), n.CreatedAt().UTC())
	if err != nil {
		return fmt.Errorf("saving notification: %w", err)
	}
	return nil
}

// ListByUser returns the most recent notifications first.
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT id, user_id, kind, message, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var (
			id, owner     uuid.UUID
			kind, message string
			read          bool
			createdAt     time.Time
		)
		if err := rows.Scan(&id, &owner, &kind, &message, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, domain.RehydrateNotification(
			id, owner, domain.Kind(kind), message, read, createdAt, createdAt))
	}
	return notifications, rows.Err()
}

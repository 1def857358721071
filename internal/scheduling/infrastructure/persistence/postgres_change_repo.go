package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresChangeRepository implements domain.Repository on Postgres.
type PostgresChangeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChangeRepository creates a Postgres schedule change repository.
func NewPostgresChangeRepository(pool *pgxpool.Pool) *PostgresChangeRepository {
	return &PostgresChangeRepository{pool: pool}
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresChangeRepository) executor(ctx context.Context) pgxExecutor {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.pool
}

// Save writes the change and its moves. Records are write-once.
func (r *PostgresChangeRepository) Save(ctx context.Context, change *domain.ScheduleChange) error {
	exec := r.executor(ctx)

	_, err := exec.Exec(ctx,
		`INSERT INTO schedule_changes (id, user_id, trigger_kind, affected_task_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		change.ID(), change.UserID(), string(change.Trigger()),
		change.AffectedTaskID(), change.CreatedAt().UTC())
	if err != nil {
		return fmt.Errorf("saving schedule change: %w", err)
	}

	for position, move := range change.Moves() {
		_, err := exec.Exec(ctx,
			`INSERT INTO schedule_change_moves
			(change_id, position, task_id, previous_start, previous_end, new_start, new_end, action)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			change.ID(), position, move.TaskID,
			move.PreviousStart.UTC(), move.PreviousEnd.UTC(),
			move.NewStart.UTC(), move.NewEnd.UTC(), string(move.Action))
		if err != nil {
			return fmt.Errorf("saving schedule change move: %w", err)
		}
	}
	return nil
}

// ListByUser returns the most recent changes first.
func (r *PostgresChangeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ScheduleChange, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT id, user_id, trigger_kind, affected_task_id, created_at
		FROM schedule_changes WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying schedule changes: %w", err)
	}
	defer rows.Close()

	type header struct {
		id, affected uuid.UUID
		owner        uuid.UUID
		trigger      string
		createdAt    time.Time
	}
	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.owner, &h.trigger, &h.affected, &h.createdAt); err != nil {
			return nil, fmt.Errorf("scanning schedule change: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	changes := make([]*domain.ScheduleChange, 0, len(headers))
	for _, h := range headers {
		moves, err := r.loadMoves(ctx, h.id)
		if err != nil {
			return nil, err
		}
		changes = append(changes, domain.RehydrateScheduleChange(
			h.id, h.owner, domain.TriggerKind(h.trigger), h.affected, moves, h.createdAt, h.createdAt))
	}
	return changes, nil
}

func (r *PostgresChangeRepository) loadMoves(ctx context.Context, changeID uuid.UUID) ([]domain.TaskMove, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT task_id, previous_start, previous_end, new_start, new_end, action
		FROM schedule_change_moves WHERE change_id = $1 ORDER BY position`,
		changeID)
	if err != nil {
		return nil, fmt.Errorf("querying schedule change moves: %w", err)
	}
	defer rows.Close()

	var moves []domain.TaskMove
	for rows.Next() {
		var (
			move   domain.TaskMove
			action string
		)
		err := rows.Scan(&move.TaskID, &move.PreviousStart, &move.PreviousEnd,
			&move.NewStart, &move.NewEnd, &action)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule change move: %w", err)
		}
		move.Action = domain.MoveAction(action)
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

// Package persistence stores schedule change audit records.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteChangeRepository implements domain.Repository on SQLite.
type SQLiteChangeRepository struct {
	db *sql.DB
}

// NewSQLiteChangeRepository creates a SQLite schedule change repository.
func NewSQLiteChangeRepository(db *sql.DB) *SQLiteChangeRepository {
	return &SQLiteChangeRepository{db: db}
}

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteChangeRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save writes the change and its moves. Records are write-once.
func (r *SQLiteChangeRepository) Save(ctx context.Context, change *domain.ScheduleChange) error {
	exec := r.executor(ctx)

	_, err := exec.ExecContext(ctx,
		`INSERT INTO schedule_changes (id, user_id, trigger_kind, affected_task_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		change.ID().String(),
		change.UserID().String(),
		string(change.Trigger()),
		change.AffectedTaskID().String(),
		change.CreatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving schedule change: %w", err)
	}

	for position, move := range change.Moves() {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO schedule_change_moves
			(change_id, position, task_id, previous_start, previous_end, new_start, new_end, action)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			change.ID().String(),
			position,
			move.TaskID.String(),
			move.PreviousStart.UTC().Format(time.RFC3339Nano),
			move.PreviousEnd.UTC().Format(time.RFC3339Nano),
			move.NewStart.UTC().Format(time.RFC3339Nano),
			move.NewEnd.UTC().Format(time.RFC3339Nano),
			string(move.Action),
		)
		if err != nil {
			return fmt.Errorf("saving schedule change move: %w", err)
		}
	}
	return nil
}

// ListByUser returns the most recent changes first.
func (r *SQLiteChangeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ScheduleChange, error) {
	rows, err := r.executor(ctx).QueryContext(ctx,
		`SELECT id, user_id, trigger_kind, affected_task_id, created_at
		FROM schedule_changes WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying schedule changes: %w", err)
	}
	defer rows.Close()

	var changes []*domain.ScheduleChange
	for rows.Next() {
		var (
			idStr, userIDStr, trigger, affectedStr, createdAtStr string
		)
		if err := rows.Scan(&idStr, &userIDStr, &trigger, &affectedStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning schedule change: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing schedule change id: %w", err)
		}
		owner, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parsing schedule change user id: %w", err)
		}
		affected, err := uuid.Parse(affectedStr)
		if err != nil {
			return nil, fmt.Errorf("parsing affected task id: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing schedule change created_at: %w", err)
		}

		moves, err := r.loadMoves(ctx, idStr)
		if err != nil {
			return nil, err
		}
		changes = append(changes, domain.RehydrateScheduleChange(
			id, owner, domain.TriggerKind(trigger), affected, moves, createdAt, createdAt))
	}
	return changes, rows.Err()
}

func (r *SQLiteChangeRepository) loadMoves(ctx context.Context, changeID string) ([]domain.TaskMove, error) {
	rows, err := r.executor(ctx).QueryContext(ctx,
		`SELECT task_id, previous_start, previous_end, new_start, new_end, action
		FROM schedule_change_moves WHERE change_id = ? ORDER BY position`,
		changeID)
	if err != nil {
		return nil, fmt.Errorf("querying schedule change moves: %w", err)
	}
	defer rows.Close()

	var moves []domain.TaskMove
	for rows.Next() {
		var (
			taskIDStr, prevStart, prevEnd, newStart, newEnd, action string
		)
		if err := rows.Scan(&taskIDStr, &prevStart, &prevEnd, &newStart, &newEnd, &action); err != nil {
			return nil, fmt.Errorf("scanning schedule change move: %w", err)
		}
		taskID, err := uuid.Parse(taskIDStr)
		if err != nil {
			return nil, fmt.Errorf("parsing move task id: %w", err)
		}
		move := domain.TaskMove{TaskID: taskID, Action: domain.MoveAction(action)}
		for _, pair := range []struct {
			raw  string
			dest *time.Time
		}{
			{prevStart, &move.PreviousStart},
			{prevEnd, &move.PreviousEnd},
			{newStart, &move.NewStart},
			{newEnd, &move.NewEnd},
		} {
			parsed, err := time.Parse(time.RFC3339Nano, pair.raw)
			if err != nil {
				return nil, fmt.Errorf("parsing move timestamp: %w", err)
			}
			*pair.dest = parsed
		}
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

// Package persistence provides SQLite and Postgres task storage.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, title, description, category, status, priority,
	estimate_minutes, energy, deadline, scheduled_start, scheduled_end,
	calendar_event_id, completed_at, created_at, updated_at`

// SQLiteTaskRepository implements task.Repository on SQLite.
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository creates a SQLite task repository.
func NewSQLiteTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteTaskRepository) executor(ctx context.Context) sqliteExecutor {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save inserts or replaces the task row.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			status = excluded.status,
			priority = excluded.priority,
			estimate_minutes = excluded.estimate_minutes,
			energy = excluded.energy,
			deadline = excluded.deadline,
			scheduled_start = excluded.scheduled_start,
			scheduled_end = excluded.scheduled_end,
			calendar_event_id = excluded.calendar_event_id,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at`

	_, err := r.executor(ctx).ExecContext(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		t.Title(),
		t.Description(),
		t.Category(),
		string(t.Status()),
		t.Priority().Int(),
		t.Estimate().Minutes(),
		string(t.Energy()),
		formatNullableTime(t.Deadline()),
		formatNullableTime(t.ScheduledStart()),
		formatNullableTime(t.ScheduledEnd()),
		t.CalendarEventID(),
		formatNullableTime(t.CompletedAt()),
		t.CreatedAt().UTC().Format(time.RFC3339Nano),
		t.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// FindByID returns the task or (nil, nil) when absent.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	tasks, err := r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// FindActiveByUser returns pending, scheduled and in-progress tasks.
func (r *SQLiteTaskRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND status IN (?, ?, ?)
		ORDER BY created_at`,
		userID.String(),
		string(task.StatusPending), string(task.StatusScheduled), string(task.StatusInProgress))
}

// FindScheduledInRange returns tasks starting in [from, to), ordered by
// scheduled start.
func (r *SQLiteTaskRepository) FindScheduledInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND scheduled_start IS NOT NULL
			AND scheduled_start >= ? AND scheduled_start < ?
		ORDER BY scheduled_start`,
		userID.String(),
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano))
}

// ListByUser returns all tasks for the user, newest first.
func (r *SQLiteTaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC`,
		userID.String())
}

func (r *SQLiteTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(rows *sql.Rows) (*task.Task, error) {
	var (
		idStr, userIDStr, title, description, category, status, energy string
		priority, estimateMinutes                                      int
		deadline, scheduledStart, scheduledEnd, completedAt            sql.NullString
		calendarEventID, createdAtStr, updatedAtStr                    string
	)
	err := rows.Scan(&idStr, &userIDStr, &title, &description, &category, &status,
		&priority, &estimateMinutes, &energy, &deadline, &scheduledStart,
		&scheduledEnd, &calendarEventID, &completedAt, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing task id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parsing task user id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing task created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing task updated_at: %w", err)
	}

	deadlinePtr, err := parseNullableTime(deadline)
	if err != nil {
		return nil, err
	}
	startPtr, err := parseNullableTime(scheduledStart)
	if err != nil {
		return nil, err
	}
	endPtr, err := parseNullableTime(scheduledEnd)
	if err != nil {
		return nil, err
	}
	completedPtr, err := parseNullableTime(completedAt)
	if err != nil {
		return nil, err
	}

	return task.Rehydrate(
		id, userID, title, description, category,
		task.Status(status),
		value_objects.NewPriority(priority),
		value_objects.RehydrateDuration(estimateMinutes),
		value_objects.ParseEnergy(energy),
		deadlinePtr, startPtr, endPtr, completedPtr,
		calendarEventID, createdAt, updatedAt,
	), nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("parsing time column: %w", err)
	}
	return &t, nil
}

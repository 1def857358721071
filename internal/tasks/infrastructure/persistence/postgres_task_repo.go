package persistence

import (
	"context"
	"fmt"
	"time"

	sharedPersistence "github.com/felixgeelhaar/tempora/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTaskRepository implements task.Repository on Postgres.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a Postgres task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresTaskRepository) executor(ctx context.Context) pgxExecutor {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.pool
}

// Save inserts or updates the task row.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			estimate_minutes = EXCLUDED.estimate_minutes,
			energy = EXCLUDED.energy,
			deadline = EXCLUDED.deadline,
			scheduled_start = EXCLUDED.scheduled_start,
			scheduled_end = EXCLUDED.scheduled_end,
			calendar_event_id = EXCLUDED.calendar_event_id,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at`

	_, err := r.executor(ctx).Exec(ctx, query,
		t.ID(), t.UserID(), t.Title(), t.Description(), t.Category(),
		string(t.Status()), t.Priority().Int(), t.Estimate().Minutes(),
		string(t.Energy()), t.Deadline(), t.ScheduledStart(), t.ScheduledEnd(),
		t.CalendarEventID(), t.CompletedAt(),
		t.CreatedAt().UTC(), t.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// FindByID returns the task or (nil, nil) when absent.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	tasks, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// FindActiveByUser returns pending, scheduled and in-progress tasks.
func (r *PostgresTaskRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at`,
		userID,
		[]string{string(task.StatusPending), string(task.StatusScheduled), string(task.StatusInProgress)})
}

// FindScheduledInRange returns tasks starting in [from, to).
func (r *PostgresTaskRepository) FindScheduledInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1 AND scheduled_start IS NOT NULL
			AND scheduled_start >= $2 AND scheduled_start < $3
		ORDER BY scheduled_start`,
		userID, from.UTC(), to.UTC())
}

// ListByUser returns all tasks for the user, newest first.
func (r *PostgresTaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *PostgresTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanPgxTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanPgxTask(rows pgx.Rows) (*task.Task, error) {
	var (
		id, userID                                          uuid.UUID
		title, description, category, status, energy        string
		priority, estimateMinutes                           int
		deadline, scheduledStart, scheduledEnd, completedAt *time.Time
		calendarEventID                                     string
		createdAt, updatedAt                                time.Time
	)
	err := rows.Scan(&id, &userID, &title, &description, &category, &status,
		&priority, &estimateMinutes, &energy, &deadline, &scheduledStart,
		&scheduledEnd, &calendarEventID, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	return task.Rehydrate(
		id, userID, title, description, category,
		task.Status(status),
		value_objects.NewPriority(priority),
		value_objects.RehydrateDuration(estimateMinutes),
		value_objects.ParseEnergy(energy),
		deadline, scheduledStart, scheduledEnd, completedAt,
		calendarEventID, createdAt, updatedAt,
	), nil
}

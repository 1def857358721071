package migrations

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority INTEGER NOT NULL,
		estimate_minutes INTEGER NOT NULL,
		energy TEXT NOT NULL,
		deadline TIMESTAMPTZ,
		scheduled_start TIMESTAMPTZ,
		scheduled_end TIMESTAMPTZ,
		calendar_event_id TEXT NOT NULL DEFAULT '',
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_start ON tasks(user_id, scheduled_start)`,
	`CREATE TABLE IF NOT EXISTS memory_entries (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		memory_type TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, memory_type, key)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_changes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		trigger_kind TEXT NOT NULL,
		affected_task_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_changes_user ON schedule_changes(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS schedule_change_moves (
		change_id UUID NOT NULL REFERENCES schedule_changes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		task_id UUID NOT NULL,
		previous_start TIMESTAMPTZ NOT NULL,
		previous_end TIMESTAMPTZ NOT NULL,
		new_start TIMESTAMPTZ NOT NULL,
		new_end TIMESTAMPTZ NOT NULL,
		action TEXT NOT NULL,
		PRIMARY KEY(change_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}

// ApplyPostgres creates all tables if they do not exist.
func ApplyPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

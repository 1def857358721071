// Package migrations holds the embedded schema for local SQLite mode.
package migrations

import "database/sql"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority INTEGER NOT NULL,
		estimate_minutes INTEGER NOT NULL,
		energy TEXT NOT NULL,
		deadline TEXT,
		scheduled_start TEXT,
		scheduled_end TEXT,
		calendar_event_id TEXT NOT NULL DEFAULT '',
		completed_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_start ON tasks(user_id, scheduled_start)`,
	`CREATE TABLE IF NOT EXISTS memory_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		memory_type TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, memory_type, key)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_changes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		affected_task_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_changes_user ON schedule_changes(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS schedule_change_moves (
		change_id TEXT NOT NULL REFERENCES schedule_changes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		task_id TEXT NOT NULL,
		previous_start TEXT NOT NULL,
		previous_end TEXT NOT NULL,
		new_start TEXT NOT NULL,
		new_end TEXT NOT NULL,
		action TEXT NOT NULL,
		PRIMARY KEY(change_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}

// ApplySQLite creates all tables if they do not exist.
func ApplySQLite(db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

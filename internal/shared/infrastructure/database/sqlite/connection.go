// Package sqlite opens and migrates the embedded SQLite database used in
// local mode.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/tempora/internal/shared/infrastructure/migrations"
	_ "modernc.org/sqlite"
)

// Open opens (and creates if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// modernc sqlite is not safe for concurrent writers on one connection pool
	// beyond what the busy timeout covers; a single connection keeps writes
	// serialized.
	db.SetMaxOpenConns(1)

	if err := migrations.ApplySQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return db, nil
}

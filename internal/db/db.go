// Package db provides the sqlite connection and schema for the action ledger.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database and initializes the schema
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates all required tables
func initSchema(db *sql.DB) error {
	// Action ledger - append-only audit of proxied requests, never light state
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS action_ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT,
			action TEXT NOT NULL,
			selector TEXT NOT NULL,
			status INTEGER NOT NULL,
			result TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_action_ledger_ts ON action_ledger(timestamp);
		CREATE INDEX IF NOT EXISTS idx_action_ledger_action_ts ON action_ledger(action, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("failed to create action_ledger table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

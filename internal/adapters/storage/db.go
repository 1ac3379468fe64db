package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// pragmas applied to every pooled connection via the DSN.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// schema creates the participant and attendance tables.
// The pair index backs the single-statement upsert in the attendance store.
const schema = `
	CREATE TABLE IF NOT EXISTS participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		email TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		participant_id INTEGER,
		session_date TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('Present', 'Absent')),
		FOREIGN KEY (participant_id) REFERENCES participants (id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_participant_date
		ON attendance_records (participant_id, session_date);
	`

// DSN returns the driver connection string for a database file.
func DSN(path string) string {
	return path + pragmas
}

// Open opens the file-backed SQLite store and verifies it is reachable.
// PRE: path is a writable file path (or ":memory:" for a single-connection test db)
// POST: Returns an open *sql.DB or an error
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: Both tables and the pair index exist; existing rows are untouched
func InitDB(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

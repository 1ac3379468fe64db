// Package storagetest opens throwaway SQLite databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"attendance/internal/adapters/storage"
)

// Open creates a temp-file SQLite database with the schema applied.
// A file is used instead of ":memory:" so every pooled connection sees the same data.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db := OpenEmpty(t)
	if err := storage.InitDB(context.Background(), db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return db
}

// OpenEmpty creates a temp-file SQLite database without any schema.
func OpenEmpty(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

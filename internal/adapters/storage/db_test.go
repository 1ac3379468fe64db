package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	"attendance/internal/adapters/storage"
	"attendance/internal/adapters/storage/storagetest"
)

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestInitDB_Fresh verifies the schema applies cleanly to an empty database.
func TestInitDB_Fresh(t *testing.T) {
	db := storagetest.OpenEmpty(t)

	if err := storage.InitDB(context.Background(), db); err != nil {
		t.Fatalf("InitDB failed on fresh db: %v", err)
	}

	got := getTableNames(t, db)
	want := []string{"attendance_records", "participants"}
	if len(got) != len(want) {
		t.Fatalf("tables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestInitDB_Idempotent verifies re-running InitDB keeps existing rows.
func TestInitDB_Idempotent(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO participants (name) VALUES (?)", "Alice"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := storage.InitDB(ctx, db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM participants").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("participants = %d, want 1 after re-init", n)
	}
}

// TestSchema_Constraints verifies the name uniqueness, status check and pair index.
func TestSchema_Constraints(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO participants (name) VALUES ('Alice')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"duplicate name", "INSERT INTO participants (name) VALUES ('Alice')"},
		{"null name", "INSERT INTO participants (name) VALUES (NULL)"},
		{"status outside enum", "INSERT INTO attendance_records (participant_id, session_date, status) VALUES (1, '2024-01-01', 'Late')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.query)
			if err == nil {
				t.Fatal("expected constraint error")
			}
			if !storage.IsConstraint(err) {
				t.Errorf("IsConstraint(%v) = false, want true", err)
			}
			if storage.Classify(err) != storage.FailureConstraint {
				t.Errorf("Classify = %v, want constraint", storage.Classify(err))
			}
		})
	}

	t.Run("duplicate pair", func(t *testing.T) {
		q := "INSERT INTO attendance_records (participant_id, session_date, status) VALUES (1, '2024-01-01', 'Present')"
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("first insert: %v", err)
		}
		if _, err := db.ExecContext(ctx, q); !storage.IsConstraint(err) {
			t.Errorf("second insert err = %v, want constraint", err)
		}
	})
}

// TestWrap_Classify verifies sentinel wrapping and classification.
func TestWrap_Classify(t *testing.T) {
	if storage.Wrap(nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if storage.Classify(nil) != storage.FailureNone {
		t.Error("Classify(nil) should be FailureNone")
	}

	plain := errors.New("disk I/O error")
	wrapped := storage.Wrap(plain)
	if !errors.Is(wrapped, storage.ErrStorage) {
		t.Errorf("Wrap(plain) should match ErrStorage: %v", wrapped)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("Wrap should keep the cause")
	}
	if storage.Classify(wrapped) != storage.FailureStorage {
		t.Errorf("Classify = %v, want storage", storage.Classify(wrapped))
	}
	if storage.Wrap(wrapped) != wrapped {
		t.Error("Wrap should not double-wrap")
	}
	if storage.Classify(context.Canceled) != storage.FailureStorage {
		t.Error("context errors classify as storage failures")
	}
}

// TestFailureKind_String verifies log labels.
func TestFailureKind_String(t *testing.T) {
	cases := map[storage.FailureKind]string{
		storage.FailureNone:       "none",
		storage.FailureConstraint: "constraint",
		storage.FailureStorage:    "storage",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}

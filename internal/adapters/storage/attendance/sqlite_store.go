package attendance

import (
	"context"

	"attendance/internal/adapters/storage"
	domain "attendance/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Record inserts or updates the status for a (participant, date) pair.
// PRE: participantID > 0, sessionDate non-empty
// POST: Exactly one row exists for the pair, holding status (last write wins)
// INVARIANT: A single statement against the pair index; concurrent callers cannot create duplicates
func (s *SQLiteStore) Record(ctx context.Context, participantID int64, sessionDate, status string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (participant_id, session_date, status)
		VALUES (?, ?, ?)
		ON CONFLICT(participant_id, session_date) DO UPDATE SET status = excluded.status`,
		participantID, sessionDate, status)
	return storage.Wrap(err)
}

// ForSession retrieves the records for a date joined with participant names.
// PRE: none
// POST: Returns a non-nil slice ordered by participant name; empty for unknown dates
func (s *SQLiteStore) ForSession(ctx context.Context, sessionDate string) ([]domain.SessionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, ar.status, ar.session_date
		FROM attendance_records ar
		JOIN participants p ON ar.participant_id = p.id
		WHERE ar.session_date = ?
		ORDER BY p.name`, sessionDate)
	if err != nil {
		return []domain.SessionEntry{}, storage.Wrap(err)
	}
	defer rows.Close()

	results := []domain.SessionEntry{}
	for rows.Next() {
		var e domain.SessionEntry
		if err := rows.Scan(&e.ParticipantName, &e.Status, &e.SessionDate); err != nil {
			return []domain.SessionEntry{}, storage.Wrap(err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return []domain.SessionEntry{}, storage.Wrap(err)
	}
	return results, nil
}

// StatusesForSession returns participant id -> status for a date.
// PRE: none
// POST: Returns a non-nil map; missing participants have no entry
func (s *SQLiteStore) StatusesForSession(ctx context.Context, sessionDate string) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, status FROM attendance_records WHERE session_date = ?", sessionDate)
	if err != nil {
		return map[int64]string{}, storage.Wrap(err)
	}
	defer rows.Close()

	statuses := make(map[int64]string)
	for rows.Next() {
		var id int64
		var status string
		if err := rows.Scan(&id, &status); err != nil {
			return map[int64]string{}, storage.Wrap(err)
		}
		statuses[id] = status
	}
	if err := rows.Err(); err != nil {
		return map[int64]string{}, storage.Wrap(err)
	}
	return statuses, nil
}

// CountForPair returns how many rows exist for a (participant, date) pair.
// PRE: none
// POST: Returns 0 or 1 while the pair index is present
func (s *SQLiteStore) CountForPair(ctx context.Context, participantID int64, sessionDate string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE participant_id = ? AND session_date = ?",
		participantID, sessionDate).Scan(&n)
	if err != nil {
		return 0, storage.Wrap(err)
	}
	return n, nil
}

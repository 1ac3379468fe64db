package participant

import (
	"context"
	"database/sql"
	"fmt"

	"attendance/internal/adapters/storage"
	domain "attendance/internal/domain/participant"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new participant Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Add inserts a participant and returns its generated id.
// PRE: name is non-blank
// POST: Returns id > 0, or an error matching domain.ErrDuplicateName and
// storage.ErrConstraint when the name is taken, or storage.ErrStorage otherwise
func (s *SQLiteStore) Add(ctx context.Context, name, email string) (int64, error) {
	var emailVal any
	if email != "" {
		emailVal = email
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO participants (name, email) VALUES (?, ?)", name, emailVal)
	if err != nil {
		if storage.IsConstraint(err) {
			return 0, fmt.Errorf("%w: %w", domain.ErrDuplicateName, storage.Wrap(err))
		}
		return 0, storage.Wrap(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storage.Wrap(err)
	}
	return id, nil
}

// ListAll retrieves every participant ordered by name.
// PRE: none
// POST: Returns a non-nil slice sorted lexicographically by name
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM participants ORDER BY name")
	if err != nil {
		return []domain.Participant{}, storage.Wrap(err)
	}
	defer rows.Close()

	results := []domain.Participant{}
	for rows.Next() {
		var entity domain.Participant
		var email sql.NullString
		if err := rows.Scan(&entity.ID, &entity.Name, &email); err != nil {
			return []domain.Participant{}, storage.Wrap(err)
		}
		if email.Valid {
			entity.Email = email.String
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return []domain.Participant{}, storage.Wrap(err)
	}
	return results, nil
}

// Count returns the number of participants.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM participants").Scan(&n); err != nil {
		return 0, storage.Wrap(err)
	}
	return n, nil
}

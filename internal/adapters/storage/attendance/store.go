package attendance

import (
	"context"

	domain "attendance/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	Record(ctx context.Context, participantID int64, sessionDate, status string) error
	ForSession(ctx context.Context, sessionDate string) ([]domain.SessionEntry, error)
	StatusesForSession(ctx context.Context, sessionDate string) (map[int64]string, error)
	CountForPair(ctx context.Context, participantID int64, sessionDate string) (int, error)
}

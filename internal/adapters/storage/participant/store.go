package participant

import (
	"context"

	domain "attendance/internal/domain/participant"
)

// Store persists Participant state.
type Store interface {
	Add(ctx context.Context, name, email string) (int64, error)
	ListAll(ctx context.Context) ([]domain.Participant, error)
	Count(ctx context.Context) (int, error)
}

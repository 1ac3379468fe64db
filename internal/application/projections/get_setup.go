package projections

import (
	"context"
	"log/slog"

	"attendance/internal/domain/participant"
)

// ParticipantLister defines the participant store interface needed by the screens.
type ParticipantLister interface {
	ListAll(ctx context.Context) ([]participant.Participant, error)
}

// GetSetupQuery carries the date currently held in session state.
type GetSetupQuery struct {
	SessionDate string
}

// GetSetupResult is the data behind the Setup screen.
type GetSetupResult struct {
	SessionDate  string
	Participants []participant.Participant
}

// GetSetupDeps holds dependencies for GetSetup.
type GetSetupDeps struct {
	Participants ParticipantLister
}

// QueryGetSetup lists participants for the Setup screen.
// PRE: none
// POST: Participants is non-nil; a storage failure is logged and yields an empty list
func QueryGetSetup(ctx context.Context, query GetSetupQuery, deps GetSetupDeps) GetSetupResult {
	return GetSetupResult{
		SessionDate:  query.SessionDate,
		Participants: listParticipants(ctx, deps.Participants),
	}
}

func listParticipants(ctx context.Context, store ParticipantLister) []participant.Participant {
	people, err := store.ListAll(ctx)
	if err != nil {
		slog.Error("projection_event", "event", "participants_unavailable", "error", err)
		return []participant.Participant{}
	}
	if people == nil {
		return []participant.Participant{}
	}
	return people
}

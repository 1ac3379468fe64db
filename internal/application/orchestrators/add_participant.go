package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	emailAdapter "attendance/internal/adapters/email"
	"attendance/internal/adapters/metrics"
	"attendance/internal/domain/participant"
)

// ParticipantWriter defines the participant store interface needed to add participants.
type ParticipantWriter interface {
	Add(ctx context.Context, name, email string) (int64, error)
}

// AddParticipantInput carries input for the add-participant orchestrator.
type AddParticipantInput struct {
	Name  string `validate:"required"`
	Email string // optional; used only as a notice address
}

// AddParticipantResult reports the new id (zero unless Added) and the outcome.
type AddParticipantResult struct {
	ID      int64
	Outcome Outcome
}

// AddParticipantDeps holds dependencies for AddParticipant.
type AddParticipantDeps struct {
	Participants ParticipantWriter
	Sender       emailAdapter.Sender // optional: nil skips the welcome notice
	Metrics      *metrics.Metrics    // optional
}

// ExecuteAddParticipant registers a participant.
// PRE: none
// POST: On OutcomeAdded a participant row exists with the name exactly as given; any other
// outcome leaves the participant set unchanged and returns a non-nil error
// INVARIANT: A welcome notice failure never fails the add
func ExecuteAddParticipant(ctx context.Context, input AddParticipantInput, deps AddParticipantDeps) (AddParticipantResult, error) {
	p := participant.Participant{Name: input.Name, Email: input.Email}
	if err := p.Validate(); err != nil {
		deps.Metrics.ParticipantAdded(string(OutcomeInvalid))
		return AddParticipantResult{Outcome: OutcomeInvalid}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validate.Struct(input); err != nil {
		deps.Metrics.ParticipantAdded(string(OutcomeInvalid))
		return AddParticipantResult{Outcome: OutcomeInvalid}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	id, err := deps.Participants.Add(ctx, input.Name, input.Email)
	if err != nil {
		outcome := outcomeFor(err, OutcomeDuplicate)
		deps.Metrics.ParticipantAdded(string(outcome))
		slog.Warn("participant_event", "event", "participant_add_failed", "name", input.Name, "outcome", outcome, "error", err)
		return AddParticipantResult{Outcome: outcome}, err
	}

	deps.Metrics.ParticipantAdded(string(OutcomeAdded))
	slog.Info("participant_event", "event", "participant_added", "participant_id", id, "name", input.Name)

	if p.HasEmail() && deps.Sender != nil {
		sendWelcome(ctx, input.Name, input.Email, deps)
	}
	return AddParticipantResult{ID: id, Outcome: OutcomeAdded}, nil
}

func sendWelcome(ctx context.Context, name, to string, deps AddParticipantDeps) {
	req, err := emailAdapter.WelcomeNotice(name, to)
	if err == nil {
		_, err = deps.Sender.Send(ctx, req)
	}
	if err != nil {
		deps.Metrics.NoticeSent("welcome", "failed")
		slog.Warn("notice_event", "event", "welcome_failed", "name", name, "error", err)
		return
	}
	deps.Metrics.NoticeSent("welcome", "sent")
}

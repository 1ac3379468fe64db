package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"attendance/internal/adapters/metrics"
	"attendance/internal/domain/attendance"
)

// AttendanceWriter defines the attendance store interface needed to record statuses.
type AttendanceWriter interface {
	Record(ctx context.Context, participantID int64, sessionDate, status string) error
}

// RecordAttendanceInput carries one participant's status for one date.
type RecordAttendanceInput struct {
	ParticipantID int64  `validate:"gt=0"`
	SessionDate   string `validate:"required"`
	Status        string `validate:"required,oneof=Present Absent"`
}

// RecordAttendanceDeps holds dependencies for RecordAttendance.
type RecordAttendanceDeps struct {
	Attendance AttendanceWriter
	Metrics    *metrics.Metrics // optional
}

// ExecuteRecordAttendance stores a status for a (participant, date) pair.
// PRE: none
// POST: On OutcomeRecorded exactly one record exists for the pair holding Status
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) (Outcome, error) {
	rec := attendance.Record{
		ParticipantID: input.ParticipantID,
		SessionDate:   input.SessionDate,
		Status:        input.Status,
	}
	if err := rec.Validate(); err != nil {
		deps.Metrics.Recorded(input.Status, string(OutcomeInvalid))
		return OutcomeInvalid, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validate.Struct(input); err != nil {
		deps.Metrics.Recorded(input.Status, string(OutcomeInvalid))
		return OutcomeInvalid, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := deps.Attendance.Record(ctx, input.ParticipantID, input.SessionDate, input.Status); err != nil {
		outcome := outcomeFor(err, OutcomeInvalid)
		deps.Metrics.Recorded(input.Status, string(outcome))
		return outcome, err
	}

	deps.Metrics.Recorded(input.Status, string(OutcomeRecorded))
	slog.Debug("attendance_event", "event", "status_recorded", "participant_id", input.ParticipantID, "session_date", input.SessionDate, "status", input.Status)
	return OutcomeRecorded, nil
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	emailAdapter "attendance/internal/adapters/email"
	"attendance/internal/adapters/metrics"
	"attendance/internal/domain/attendance"
	"attendance/internal/domain/participant"
)

// StatusFieldPrefix marks the per-participant form fields of a submission.
const StatusFieldPrefix = "status_"

// ErrMissingSessionDate is returned when a submission has no date.
var ErrMissingSessionDate = errors.New("session date is required")

// ParticipantDirectory lists participants for notice lookups.
type ParticipantDirectory interface {
	ListAll(ctx context.Context) ([]participant.Participant, error)
}

// SubmitAttendanceInput carries a whole mark-sheet submission.
// Fields holds every submitted form value; only status_<id> keys are used.
type SubmitAttendanceInput struct {
	SessionDate string
	Fields      map[string]string
}

// SubmitAttendanceResult summarizes a submission.
type SubmitAttendanceResult struct {
	Recorded int
	Failed   int
	Skipped  []string // field names whose id suffix was not a positive integer
	Absent   []int64  // participants recorded Absent
}

// SubmitAttendanceDeps holds dependencies for SubmitAttendance.
type SubmitAttendanceDeps struct {
	Attendance      AttendanceWriter
	Directory       ParticipantDirectory // optional: required only when NotifyAbsentees is set
	Sender          emailAdapter.Sender  // optional
	NotifyAbsentees bool
	Metrics         *metrics.Metrics // optional
}

// ExecuteSubmitAttendance records every status_<id> field for the session date.
// PRE: SessionDate is non-blank
// POST: Each well-formed field is recorded independently; failures do not undo
// earlier writes and are counted rather than returned
func ExecuteSubmitAttendance(ctx context.Context, input SubmitAttendanceInput, deps SubmitAttendanceDeps) (SubmitAttendanceResult, error) {
	result := SubmitAttendanceResult{Skipped: []string{}, Absent: []int64{}}
	if strings.TrimSpace(input.SessionDate) == "" {
		return result, ErrMissingSessionDate
	}

	keys := make([]string, 0, len(input.Fields))
	for key := range input.Fields {
		if strings.HasPrefix(key, StatusFieldPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	recordDeps := RecordAttendanceDeps{Attendance: deps.Attendance, Metrics: deps.Metrics}
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, StatusFieldPrefix), 10, 64)
		if err != nil || id <= 0 {
			slog.Warn("attendance_event", "event", "field_skipped", "field", key, "session_date", input.SessionDate)
			deps.Metrics.FieldSkipped()
			result.Skipped = append(result.Skipped, key)
			continue
		}

		status := input.Fields[key]
		outcome, err := ExecuteRecordAttendance(ctx, RecordAttendanceInput{
			ParticipantID: id,
			SessionDate:   input.SessionDate,
			Status:        status,
		}, recordDeps)
		if err != nil {
			slog.Warn("attendance_event", "event", "record_failed", "participant_id", id, "session_date", input.SessionDate, "outcome", outcome, "error", err)
			result.Failed++
			continue
		}
		result.Recorded++
		if status == attendance.StatusAbsent {
			result.Absent = append(result.Absent, id)
		}
	}

	slog.Info("attendance_event", "event", "sheet_submitted", "session_date", input.SessionDate,
		"recorded", result.Recorded, "failed", result.Failed, "skipped", len(result.Skipped))

	if deps.NotifyAbsentees && deps.Sender != nil && deps.Directory != nil && len(result.Absent) > 0 {
		notifyAbsentees(ctx, input.SessionDate, result.Absent, deps)
	}
	return result, nil
}

// notifyAbsentees sends one batched notice to absentees that have an email.
// Failures are logged only.
func notifyAbsentees(ctx context.Context, sessionDate string, absent []int64, deps SubmitAttendanceDeps) {
	people, err := deps.Directory.ListAll(ctx)
	if err != nil {
		slog.Warn("notice_event", "event", "absence_lookup_failed", "error", err)
		return
	}
	byID := make(map[int64]participant.Participant, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	var reqs []emailAdapter.SendRequest
	for _, id := range absent {
		p, ok := byID[id]
		if !ok || !p.HasEmail() {
			continue
		}
		req, err := emailAdapter.AbsenceNotice(p.Name, p.Email, sessionDate)
		if err != nil {
			slog.Warn("notice_event", "event", "absence_render_failed", "participant_id", id, "error", err)
			continue
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return
	}

	sent, err := deps.Sender.SendBatch(ctx, reqs)
	for range sent {
		deps.Metrics.NoticeSent("absence", "sent")
	}
	if err != nil {
		for range len(reqs) - len(sent) {
			deps.Metrics.NoticeSent("absence", "failed")
		}
		slog.Warn("notice_event", "event", "absence_batch_failed", "session_date", sessionDate, "error", err)
	}
}

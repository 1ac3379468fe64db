package projections

import (
	"context"
	"log/slog"
	"strconv"

	"attendance/internal/domain/attendance"
)

// StatusLookup defines the attendance store interface needed to pre-fill a mark sheet.
type StatusLookup interface {
	StatusesForSession(ctx context.Context, sessionDate string) (map[int64]string, error)
}

// GetMarkSheetQuery names the session being marked.
type GetMarkSheetQuery struct {
	SessionDate string
}

// MarkSheetRow is one participant line on the mark sheet.
type MarkSheetRow struct {
	ParticipantID int64
	Name          string
	Status        string // existing status, or Present when none is stored
}

// FieldName returns the form field carrying this row's status.
func (r MarkSheetRow) FieldName() string {
	return "status_" + strconv.FormatInt(r.ParticipantID, 10)
}

// IsPresent reports whether the Present control should be checked.
func (r MarkSheetRow) IsPresent() bool {
	return r.Status == attendance.StatusPresent
}

// GetMarkSheetResult is the data behind the MarkAttendance screen.
type GetMarkSheetResult struct {
	SessionDate string
	Rows        []MarkSheetRow
}

// GetMarkSheetDeps holds dependencies for GetMarkSheet.
type GetMarkSheetDeps struct {
	Participants ParticipantLister
	Statuses     StatusLookup
}

// QueryGetMarkSheet builds one row per participant, in name order.
// PRE: SessionDate is non-blank
// POST: Rows is non-nil; rows default to Present when no status is stored or the
// lookup fails
func QueryGetMarkSheet(ctx context.Context, query GetMarkSheetQuery, deps GetMarkSheetDeps) GetMarkSheetResult {
	people := listParticipants(ctx, deps.Participants)

	statuses, err := deps.Statuses.StatusesForSession(ctx, query.SessionDate)
	if err != nil {
		slog.Error("projection_event", "event", "statuses_unavailable", "session_date", query.SessionDate, "error", err)
		statuses = map[int64]string{}
	}

	rows := make([]MarkSheetRow, 0, len(people))
	for _, p := range people {
		status, ok := statuses[p.ID]
		if !ok {
			status = attendance.StatusPresent
		}
		rows = append(rows, MarkSheetRow{ParticipantID: p.ID, Name: p.Name, Status: status})
	}
	return GetMarkSheetResult{SessionDate: query.SessionDate, Rows: rows}
}

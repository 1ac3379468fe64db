package projections

import (
	"context"
	"log/slog"
	"strings"

	"attendance/internal/domain/attendance"
)

// SessionReader defines the attendance store interface needed by the report.
type SessionReader interface {
	ForSession(ctx context.Context, sessionDate string) ([]attendance.SessionEntry, error)
}

// GetSessionReportQuery carries the date from the view query string.
type GetSessionReportQuery struct {
	SessionDate string
}

// GetSessionReportResult is the data behind the ViewReport screen.
type GetSessionReportResult struct {
	SessionDate  string
	HasDate      bool
	Entries      []attendance.SessionEntry
	PresentCount int
	AbsentCount  int
}

// GetSessionReportDeps holds dependencies for GetSessionReport.
type GetSessionReportDeps struct {
	Attendance SessionReader
}

// QueryGetSessionReport lists the records for one date ordered by name.
// PRE: none
// POST: Entries is non-nil; without a date no lookup happens and HasDate is false
func QueryGetSessionReport(ctx context.Context, query GetSessionReportQuery, deps GetSessionReportDeps) GetSessionReportResult {
	result := GetSessionReportResult{
		SessionDate: query.SessionDate,
		HasDate:     strings.TrimSpace(query.SessionDate) != "",
		Entries:     []attendance.SessionEntry{},
	}
	if !result.HasDate {
		return result
	}

	entries, err := deps.Attendance.ForSession(ctx, query.SessionDate)
	if err != nil {
		slog.Error("projection_event", "event", "report_unavailable", "session_date", query.SessionDate, "error", err)
		return result
	}
	for _, e := range entries {
		if e.IsPresent() {
			result.PresentCount++
		} else {
			result.AbsentCount++
		}
	}
	if entries != nil {
		result.Entries = entries
	}
	return result
}

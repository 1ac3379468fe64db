package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"attendance/internal/adapters/http/middleware"
	"attendance/internal/adapters/http/session"
	"attendance/internal/application/orchestrators"
	"attendance/internal/application/projections"
)

// Form actions posted by the Setup screen.
const (
	actionAddParticipant = "add_participant"
	actionProceed        = "proceed_to_attendance"
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// render executes a page inside the layout. The page is buffered so a
// template failure never sends a half-written 200.
func (a *app) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	tpl, ok := a.pages[page]
	if !ok {
		internalError(w, fmt.Errorf("unknown page %q", page))
		return
	}
	data["CSRFField"] = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// saveState persists flow state. A failure is logged; the request still completes.
func (a *app) saveState(w http.ResponseWriter, r *http.Request, st session.State) {
	if err := a.sessions.Save(w, r, st); err != nil {
		slog.Warn("session_event", "event", "state_save_failed", "error", err)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

// handleSetupPage handles GET / (Setup screen).
func (a *app) handleSetupPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := middleware.StateFromContext(ctx)

	result := projections.QueryGetSetup(ctx, projections.GetSetupQuery{SessionDate: st.SessionDate}, projections.GetSetupDeps{
		Participants: a.stores.Participants,
	})

	flash := st.Flash
	if flash != "" {
		st.Flash = ""
		a.saveState(w, r, st)
	}

	a.render(w, r, "setup.html", map[string]any{
		"SessionDate":  result.SessionDate,
		"Participants": result.Participants,
		"Flash":        flash,
	})
}

// handleSetupSubmit handles POST / for both Setup actions.
func (a *app) handleSetupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	st := middleware.StateFromContext(ctx)

	if date := strings.TrimSpace(r.PostFormValue("session_date")); date != "" {
		st.SessionDate = date
	}

	switch r.PostFormValue("action") {
	case actionAddParticipant:
		if name := r.PostFormValue("participant_name"); name != "" {
			st.Flash = a.addParticipant(ctx, name, r.PostFormValue("participant_email"))
		}
		a.saveState(w, r, st)
		redirect(w, r, "/")

	case actionProceed:
		a.saveState(w, r, st)
		if st.HasDate() {
			redirect(w, r, "/attendance")
			return
		}
		redirect(w, r, "/")

	default:
		a.saveState(w, r, st)
		redirect(w, r, "/")
	}
}

// addParticipant runs the orchestrator and returns the flash message to show, if any.
func (a *app) addParticipant(ctx context.Context, name, emailAddr string) string {
	result, err := orchestrators.ExecuteAddParticipant(ctx, orchestrators.AddParticipantInput{
		Name:  name,
		Email: emailAddr,
	}, orchestrators.AddParticipantDeps{
		Participants: a.stores.Participants,
		Sender:       a.sender,
		Metrics:      a.metrics,
	})
	if err == nil {
		return ""
	}
	switch result.Outcome {
	case orchestrators.OutcomeDuplicate:
		return fmt.Sprintf("A participant named %q already exists.", name)
	case orchestrators.OutcomeInvalid:
		return "Participant not added: a name is required."
	default:
		return "Participant could not be saved. Please try again."
	}
}

// handleMarkAttendancePage handles GET /attendance.
func (a *app) handleMarkAttendancePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := middleware.StateFromContext(ctx)
	if !st.HasDate() {
		redirect(w, r, "/")
		return
	}

	sheet := projections.QueryGetMarkSheet(ctx, projections.GetMarkSheetQuery{SessionDate: st.SessionDate}, projections.GetMarkSheetDeps{
		Participants: a.stores.Participants,
		Statuses:     a.stores.Attendance,
	})
	if len(sheet.Rows) == 0 {
		redirect(w, r, "/")
		return
	}

	a.render(w, r, "mark_attendance.html", map[string]any{
		"SessionDate": sheet.SessionDate,
		"Rows":        sheet.Rows,
	})
}

// handleMarkAttendanceSubmit handles POST /attendance.
func (a *app) handleMarkAttendanceSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !middleware.StateFromContext(ctx).HasDate() {
		redirect(w, r, "/")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sessionDate := strings.TrimSpace(r.PostFormValue("session_date"))
	if sessionDate == "" {
		redirect(w, r, "/")
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}

	_, err := orchestrators.ExecuteSubmitAttendance(ctx, orchestrators.SubmitAttendanceInput{
		SessionDate: sessionDate,
		Fields:      fields,
	}, orchestrators.SubmitAttendanceDeps{
		Attendance:      a.stores.Attendance,
		Directory:       a.stores.Participants,
		Sender:          a.sender,
		NotifyAbsentees: a.notifyAbsentees,
		Metrics:         a.metrics,
	})
	if err != nil {
		slog.Warn("attendance_event", "event", "submission_rejected", "error", err)
		redirect(w, r, "/")
		return
	}

	redirect(w, r, "/view?session_date_view="+url.QueryEscape(sessionDate))
}

// handleViewAttendance handles GET /view.
func (a *app) handleViewAttendance(w http.ResponseWriter, r *http.Request) {
	report := projections.QueryGetSessionReport(r.Context(), projections.GetSessionReportQuery{
		SessionDate: r.URL.Query().Get("session_date_view"),
	}, projections.GetSessionReportDeps{
		Attendance: a.stores.Attendance,
	})

	a.render(w, r, "view_attendance.html", map[string]any{
		"SessionDate":  report.SessionDate,
		"HasDate":      report.HasDate,
		"Entries":      report.Entries,
		"PresentCount": report.PresentCount,
		"AbsentCount":  report.AbsentCount,
	})
}

// handleInitDB handles POST /init_db_route.
func (a *app) handleInitDB(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteInitSchema(r.Context(), orchestrators.InitSchemaDeps{DB: a.stores.DB}); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Database initialized successfully"})
}

// handleHealthz reports whether the database answers a ping.
func (a *app) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.stores.DB.PingContext(ctx); err != nil {
		slog.Warn("health_event", "event", "db_unreachable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "ok"})
}

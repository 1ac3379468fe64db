package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"attendance/internal/adapters/email"
	"attendance/internal/adapters/http/middleware"
	"attendance/internal/adapters/http/perf"
	"attendance/internal/adapters/http/session"
	"attendance/internal/adapters/metrics"
	"attendance/internal/adapters/storage"
	attendanceStore "attendance/internal/adapters/storage/attendance"
	participantStore "attendance/internal/adapters/storage/participant"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// pageNames are the screens rendered inside layout.html.
var pageNames = []string{"setup.html", "mark_attendance.html", "view_attendance.html"}

// Database is the handle used for schema bootstrap and health checks.
type Database interface {
	storage.SQLDB
	PingContext(ctx context.Context) error
}

// Stores holds all storage dependencies.
type Stores struct {
	DB           Database
	Participants participantStore.Store
	Attendance   attendanceStore.Store
}

// Config holds the HTTP-layer settings.
type Config struct {
	Secret             string // derives the CSRF key
	SecureCookies      bool
	DisableCSRF        bool
	NotifyAbsentees    bool
	RateLimitPerSecond int
	TrustedOrigins     []string
}

// Deps holds the non-storage collaborators. Sender, Metrics and Perf may be nil.
type Deps struct {
	Sessions session.Store
	Sender   email.Sender
	Metrics  *metrics.Metrics
	Perf     *perf.Collector
}

type app struct {
	stores          *Stores
	sessions        session.Store
	sender          email.Sender
	metrics         *metrics.Metrics
	notifyAbsentees bool
	pages           map[string]*template.Template
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

// NewMux wires HTTP handlers for the app. ctx bounds background work such as
// rate-limiter cleanup.
// PRE: s and d.Sessions are non-nil; cfg.Secret is non-empty unless CSRF is disabled
// POST: Returns the fully wrapped handler
func NewMux(ctx context.Context, cfg Config, s *Stores, d Deps) (http.Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	a := &app{
		stores:          s,
		sessions:        d.Sessions,
		sender:          d.Sender,
		metrics:         d.Metrics,
		notifyAbsentees: cfg.NotifyAbsentees,
		pages:           pages,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /{$}", a.handleSetupPage)
	mux.HandleFunc("POST /{$}", a.handleSetupSubmit)
	mux.HandleFunc("GET /attendance", a.handleMarkAttendancePage)
	mux.HandleFunc("POST /attendance", a.handleMarkAttendanceSubmit)
	mux.HandleFunc("GET /view", a.handleViewAttendance)
	mux.HandleFunc("POST /init_db_route", a.handleInitDB)
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.Handle("GET /metrics", d.Metrics.Handler())
	if d.Perf != nil {
		mux.Handle("GET /debug/perf", perf.Handler(d.Perf, 10))
	}

	rate := cfg.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	csrfLayer := func(h http.Handler) http.Handler { return h }
	if !cfg.DisableCSRF {
		key, err := session.DeriveKey(cfg.Secret, "attendance csrf", 32)
		if err != nil {
			return nil, err
		}
		csrfLayer = middleware.CSRF(key, middleware.CSRFOptions{
			Secure:         cfg.SecureCookies,
			TrustedOrigins: cfg.TrustedOrigins,
			ExemptPaths:    []string{"/init_db_route"},
		})
	}

	// Request flow: Timing -> RateLimit -> SecurityHeaders -> LoadSession -> CSRF -> Mux
	return middleware.Chain(mux,
		csrfLayer,
		middleware.LoadSession(d.Sessions),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(d.Perf, d.Metrics),
	), nil
}

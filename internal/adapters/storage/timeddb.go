package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"attendance/internal/adapters/http/perf"
	"attendance/internal/adapters/metrics"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery applies when ATTENDANCE_SLOW_QUERY_MS is unset or invalid.
const DefaultSlowQuery = 50 * time.Millisecond

var (
	slowQueryOnce sync.Once
	slowQuery     time.Duration
)

func slowQueryThreshold() time.Duration {
	slowQueryOnce.Do(func() {
		slowQuery = DefaultSlowQuery
		if n, err := strconv.Atoi(os.Getenv("ATTENDANCE_SLOW_QUERY_MS")); err == nil && n > 0 {
			slowQuery = time.Duration(n) * time.Millisecond
		}
	})
	return slowQuery
}

// knownTables are matched in order; the join in the session report names
// attendance_records first.
var knownTables = []string{"attendance_records", "participants"}

// StatementLabel names a statement by its verb and the table it touches,
// e.g. "insert participants" or "select attendance_records". Labels stay
// bounded so they are safe as metric label values.
func StatementLabel(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return "empty"
	}
	verb := fields[0]
	for _, f := range fields[1:] {
		for _, table := range knownTables {
			if strings.Trim(f, "(),;") == table {
				return verb + " " + table
			}
		}
	}
	return verb
}

// TimedDB times every call made through it. Slow statements are logged as
// slow_query; every statement lands in the perf collector and the Prometheus
// query histogram under its StatementLabel. Either sink may be nil.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	metrics   *metrics.Metrics
	slow      time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db.
// PRE: db is a valid database connection
// POST: Returns a TimedDB whose slow threshold is read once from the environment
func NewTimedDB(db *sql.DB, collector *perf.Collector, m *metrics.Metrics) *TimedDB {
	return &TimedDB{db: db, collector: collector, metrics: m, slow: slowQueryThreshold()}
}

func (t *TimedDB) observe(ctx context.Context, label string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0

	switch {
	case err != nil && err != sql.ErrNoRows:
		slog.DebugContext(ctx, "query_failed", "statement", label, "duration_ms", ms, "kind", Classify(err).String(), "error", err)
	case elapsed >= t.slow:
		slog.WarnContext(ctx, "slow_query", "statement", label, "duration_ms", ms)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{Kind: perf.KindQuery, Path: label, DurationMs: ms, Timestamp: start})
	}
	t.metrics.ObserveQuery(label, elapsed.Seconds())
}

// ExecContext runs a write and records its timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (res sql.Result, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, StatementLabel(query), start, err) }()
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a multi-row read and records the time to first result.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (rows *sql.Rows, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, StatementLabel(query), start, err) }()
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row read and records its timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(ctx, StatementLabel(query), start, row.Err())
	return row
}

// BeginTx starts a transaction; statements inside it run on the *sql.Tx and are not timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (tx *sql.Tx, err error) {
	start := time.Now()
	defer func() { t.observe(ctx, "begin", start, err) }()
	return t.db.BeginTx(ctx, opts)
}

// PingContext checks the connection without recording a timing.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

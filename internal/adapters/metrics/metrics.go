package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration    *prometheus.HistogramVec
	QueryDuration      *prometheus.HistogramVec
	ParticipantsAdded  *prometheus.CounterVec
	AttendanceRecorded *prometheus.CounterVec
	FieldsSkipped      prometheus.Counter
	NoticesSent        *prometheus.CounterVec
}

// New creates and registers all collectors.
// PRE: none
// POST: Returns Metrics backed by a fresh registry (safe to call per test)
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, path and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "db_query_duration_seconds",
			Help:      "Database call latency by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		ParticipantsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "participants_added_total",
			Help:      "Participant add attempts by outcome.",
		}, []string{"outcome"}),
		AttendanceRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "records_total",
			Help:      "Attendance record writes by status and outcome.",
		}, []string{"status", "outcome"}),
		FieldsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "submission_fields_skipped_total",
			Help:      "Submitted status fields skipped for a malformed participant id.",
		}),
		NoticesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "notices_total",
			Help:      "Email notices by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.QueryDuration,
		m.ParticipantsAdded,
		m.AttendanceRecorded,
		m.FieldsSkipped,
		m.NoticesSent,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(seconds)
}

// ObserveQuery records one database call.
func (m *Metrics) ObserveQuery(op string, seconds float64) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(op).Observe(seconds)
}

// ParticipantAdded counts one add attempt.
func (m *Metrics) ParticipantAdded(outcome string) {
	if m == nil {
		return
	}
	m.ParticipantsAdded.WithLabelValues(outcome).Inc()
}

// Recorded counts one attendance write.
func (m *Metrics) Recorded(status, outcome string) {
	if m == nil {
		return
	}
	m.AttendanceRecorded.WithLabelValues(status, outcome).Inc()
}

// FieldSkipped counts one malformed submission field.
func (m *Metrics) FieldSkipped() {
	if m == nil {
		return
	}
	m.FieldsSkipped.Inc()
}

// NoticeSent counts one email notice.
func (m *Metrics) NoticeSent(kind, outcome string) {
	if m == nil {
		return
	}
	m.NoticesSent.WithLabelValues(kind, outcome).Inc()
}

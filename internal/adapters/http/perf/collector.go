// Package perf keeps an in-memory ring of request and query timings and
// summarizes them for the /debug/perf endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, statement label for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, the oldest entries are overwritten. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores an entry, overwriting the oldest when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot is the aggregated view over a time window.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	Requests       int        `json:"requests"`
	Queries        int        `json:"queries"`
	Errors         int        `json:"errors"` // requests with status >= 500
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	QueryP95Ms     float64    `json:"query_p95_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// PathStat aggregates timing for one request path or query statement.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"-"`
}

type aggregate struct {
	durations []float64
	stats     map[string]*PathStat
}

func (a *aggregate) add(e Entry) {
	a.durations = append(a.durations, e.DurationMs)
	s, ok := a.stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		a.stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
}

// Snapshot aggregates the entries recorded at or after since.
// PRE: topN > 0
// POST: Percentiles are zero for kinds with no entries in the window
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	requests := aggregate{stats: make(map[string]*PathStat)}
	queries := aggregate{stats: make(map[string]*PathStat)}
	snap := Snapshot{Since: since}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requests.add(e)
			if e.StatusCode >= 500 {
				snap.Errors++
			}
		case KindQuery:
			queries.add(e)
		}
	}

	snap.Requests = len(requests.durations)
	snap.Queries = len(queries.durations)
	snap.SlowestPaths = topByAvg(requests.stats, topN)
	snap.SlowestQueries = topByAvg(queries.stats, topN)

	sort.Float64s(requests.durations)
	snap.RequestP50Ms = percentile(requests.durations, 50)
	snap.RequestP95Ms = percentile(requests.durations, 95)
	snap.RequestP99Ms = percentile(requests.durations, 99)

	sort.Float64s(queries.durations)
	snap.QueryP95Ms = percentile(queries.durations, 95)
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest entries by average, ties broken by path.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

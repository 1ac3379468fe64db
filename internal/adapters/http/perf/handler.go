package perf

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultWindow is the look-back used when the request gives none.
const DefaultWindow = 15 * time.Minute

// Handler serves a JSON Snapshot. The optional ?minutes= query sets the window.
func Handler(c *Collector, topN int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		window := DefaultWindow
		if v := r.URL.Query().Get("minutes"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				window = time.Duration(n) * time.Minute
			}
		}
		snap := c.Snapshot(time.Now().Add(-window), topN)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			slog.Error("internal_error", "path", r.URL.Path, "error", err)
		}
	})
}

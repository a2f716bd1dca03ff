package adapthttp

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bulktracker/internal/app"
	"bulktracker/internal/metrics"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	records *app.RecordService
	trend   *app.TrendService
	metrics *metrics.Collector
}

// New creates a Server wired to the given application services. mc may be nil.
func New(rs *app.RecordService, ts *app.TrendService, mc *metrics.Collector) *Server {
	return &Server{records: rs, trend: ts, metrics: mc}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/records", s.handleRecords)
	api.HandleFunc("/trend", s.handleTrend)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.Handler())

	return s.loggingMiddleware(withNoCache(root))
}

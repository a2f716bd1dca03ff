package adapthttp

import (
	"net/http"
	"time"

	"bulktracker/internal/domain"
)

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	windows, err := intsQuery(r, "windows")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// now is overridable for reproducible reports.
	now := time.Now()
	if v := r.URL.Query().Get("now"); v != "" {
		now, err = time.Parse(domain.DayFormat, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	reports, err := s.trend.Report(r.Context(), now, windows)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windows": reports})
}

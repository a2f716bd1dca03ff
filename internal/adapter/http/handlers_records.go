package adapthttp

import (
	"net/http"

	"bulktracker/internal/domain"
)

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		records, err := s.records.Load(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})

	case http.MethodPost:
		var body domain.Measurement
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.records.Upsert(ctx, body); err != nil {
			writeMutationError(w, err)
			return
		}
		records, err := s.records.Load(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})

	case http.MethodPut:
		// Bulk edit saves arrive as raw string rows so the configured
		// coercion policy can deal with malformed cells.
		var body struct {
			Rows []domain.Row `json:"rows"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.records.ReplaceAll(ctx, body.Rows); err != nil {
			writeMutationError(w, err)
			return
		}
		records, err := s.records.Load(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

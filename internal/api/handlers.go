// Package api serves the StockCal datasets over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/leeaandrob/stockcal/internal/metrics"
	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/rs/zerolog/log"
)

// Handlers holds the API handlers.
type Handlers struct {
	store *dataset.Store
}

// NewHandlers creates new API handlers.
func NewHandlers(store *dataset.Store) *Handlers {
	return &Handlers{store: store}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Dataset returns a handler that serves the current file for kind exactly as
// stored. The file is read on every request. A missing or malformed file is
// reported to the caller only as unavailable.
func (h *Handlers) Dataset(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.store.ReadRaw(kind)
		if err != nil {
			log.Error().
				Err(err).
				Str("dataset", string(kind)).
				Msg("Dataset unavailable")
			metrics.RecordDatasetRequest(string(kind), "unavailable")
			respondError(w, http.StatusServiceUnavailable, string(kind)+" unavailable")
			return
		}

		metrics.RecordDatasetRequest(string(kind), "ok")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
	}
}

// HealthCheck returns a fixed liveness payload; it never touches the datasets.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Index lists the available endpoints.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "StockCal API",
		"endpoints": map[string]string{
			"events":     "/api/events",
			"hot_trends": "/api/hot-trends",
			"strategies": "/api/strategies",
			"health":     "/health",
		},
	})
}

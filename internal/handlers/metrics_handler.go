package handlers

import (
	"errors"
	"net/http"
	"strings"

	"insightquery/internal/database"
	"insightquery/internal/models"
)

// MetricsHandler handles GET /api/metrics and DELETE /api/metrics?object_id=...&metric=...
type MetricsHandler struct {
	db *database.DB
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(db *database.DB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

// MetricsListResponse is the response for GET /api/metrics
type MetricsListResponse struct {
	Items []models.MetricStats `json:"items"`
	Total int                  `json:"total"`
}

// HandleGet lists every stored object/metric pair
func (h *MetricsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.ListMetricsWithStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []models.MetricStats{}
	}
	writeJSON(w, http.StatusOK, MetricsListResponse{Items: items, Total: len(items)})
}

// HandleDelete removes one object's metric. Without parameters it clears the
// whole store only when all=true is given.
func (h *MetricsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("all") == "true" {
		if err := h.db.DeleteAllRecords(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	objectID := strings.TrimSpace(q.Get("object_id"))
	metric := strings.TrimSpace(q.Get("metric"))
	if objectID == "" || metric == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing query params: object_id and metric"))
		return
	}
	if err := h.db.DeleteMetricRecords(r.Context(), objectID, metric); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"insightquery/internal/insights"
	"insightquery/internal/services"
)

// InsightsHandler handles GET /api/insights/{objectId} requests
type InsightsHandler struct {
	insightService *services.InsightService
	accessToken    string
}

// NewInsightsHandler creates a new InsightsHandler instance. accessToken is
// used when the request does not carry one.
func NewInsightsHandler(insightService *services.InsightService, accessToken string) *InsightsHandler {
	return &InsightsHandler{insightService: insightService, accessToken: accessToken}
}

// Handle handles the insights request. Query parameters:
//
//	period        day, week, days_28, month or lifetime (default day)
//	metrics       comma separated metric names (default all)
//	dates         comma separated dates or timestamps, also repeatable
//	access_token  overrides the configured token
func (h *InsightsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	objectID := mux.Vars(r)["objectId"]
	q := r.URL.Query()

	period := insights.Day
	if name := q.Get("period"); name != "" {
		p, err := insights.ParsePeriod(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		period = p
	}

	var dates []string
	for _, d := range q["dates"] {
		dates = append(dates, strings.Split(d, ",")...)
	}
	instants, err := services.ParseInstants(dates)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var metrics []string
	if m := q.Get("metrics"); m != "" {
		metrics = strings.Split(m, ",")
		for i := range metrics {
			metrics[i] = strings.TrimSpace(metrics[i])
		}
	}

	token := h.accessToken
	if t := q.Get("access_token"); t != "" {
		token = t
	}

	resp, err := h.insightService.QueryByDate(r.Context(), services.InsightRequest{
		ObjectID:    objectID,
		AccessToken: token,
		Period:      period,
		Metrics:     metrics,
		Instants:    instants,
	})
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("insights query failed", slog.String("objectID", objectID), slog.Any("error", err))
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"insightquery/internal/graph"
	"insightquery/internal/insights"
	"insightquery/internal/models"
	"insightquery/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

// statusForError maps a lookup failure onto an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, insights.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, graph.ErrAuth), errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

package handlers

import (
	"net/http"

	"insightquery/internal/config"
	"insightquery/internal/insights"
)

// ConfigHandler handles GET /api/config
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// ValueRangeResponse is the JSON shape for value_range.
type ValueRangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ConfigResponse is the JSON response for GET /api/config. Tokens are never
// exposed.
type ConfigResponse struct {
	Executor   string             `json:"executor"`
	GraphURL   string             `json:"graph_url"`
	Timezone   string             `json:"timezone"`
	ValueRange ValueRangeResponse `json:"value_range"`
}

// Handle responds with the non-secret parts of the running configuration.
func (h *ConfigHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		Executor: h.cfg.Executor,
		GraphURL: h.cfg.Graph.BaseURL,
		Timezone: insights.TargetLocation().String(),
		ValueRange: ValueRangeResponse{
			Min: h.cfg.Data.ValueRange.Min,
			Max: h.cfg.Data.ValueRange.Max,
		},
	})
}

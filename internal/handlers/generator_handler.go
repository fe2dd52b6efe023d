package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"insightquery/internal/insights"
	"insightquery/internal/services"
)

// GeneratorHandler handles POST /api/generate-dummy requests
type GeneratorHandler struct {
	generator *services.Generator
	minValue  float64
	maxValue  float64
}

// NewGeneratorHandler creates a new GeneratorHandler instance
func NewGeneratorHandler(generator *services.Generator, minValue, maxValue float64) *GeneratorHandler {
	return &GeneratorHandler{
		generator: generator,
		minValue:  minValue,
		maxValue:  maxValue,
	}
}

// GenerateRequest is the body of generate-dummy. Value bounds default to the
// configured range.
type GenerateRequest struct {
	ObjectID   string   `json:"object_id"`
	Metrics    []string `json:"metrics"`
	Period     string   `json:"period"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	MinValue   *float64 `json:"min_value,omitempty"`
	MaxValue   *float64 `json:"max_value,omitempty"`
	Sequential bool     `json:"sequential"`
}

// GenerateResponse represents the response from generate-dummy endpoint
type GenerateResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Count        int    `json:"count,omitempty"`
	MetricsCount int    `json:"metrics_count,omitempty"`
}

// Handle handles the generate-dummy request
func (h *GeneratorHandler) Handle(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Message: err.Error()})
		return
	}

	count, metricsCount, err := h.generator.GenerateDummyData(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, GenerateResponse{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:      true,
		Message:      "Dummy data generated successfully",
		Count:        count,
		MetricsCount: metricsCount,
	})
}

func (h *GeneratorHandler) options(body io.Reader) (services.GenerateOptions, error) {
	var req GenerateRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return services.GenerateOptions{}, errors.New("invalid request body: " + err.Error())
	}

	opts := services.GenerateOptions{
		ObjectID:   req.ObjectID,
		Metrics:    req.Metrics,
		Period:     insights.Day,
		MinValue:   h.minValue,
		MaxValue:   h.maxValue,
		Sequential: req.Sequential,
	}
	if req.Period != "" {
		p, err := insights.ParsePeriod(req.Period)
		if err != nil {
			return opts, err
		}
		opts.Period = p
	}
	if req.MinValue != nil {
		opts.MinValue = *req.MinValue
	}
	if req.MaxValue != nil {
		opts.MaxValue = *req.MaxValue
	}

	start, err := services.ParseInstant(req.Start)
	if err != nil {
		return opts, err
	}
	end, err := services.ParseInstant(req.End)
	if err != nil {
		return opts, err
	}
	opts.Start, opts.End = start, end
	return opts, nil
}

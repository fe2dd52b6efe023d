package handlers

import (
	"net/http"
	"strings"

	"insightquery/internal/insights"
	"insightquery/internal/services"
)

// UploadHandler handles POST /api/upload-csv (multipart: file, object_id, period, mode).
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadResponse is the JSON response for upload-csv.
type UploadResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Count           int    `json:"count,omitempty"`
	MetricsAffected int    `json:"metrics_affected,omitempty"`
}

// Handle handles the upload request.
func (h *UploadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Message: "invalid multipart form: " + err.Error()})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Message: "missing or invalid file: " + err.Error()})
		return
	}
	defer file.Close()

	var mode services.ImportMode
	switch strings.TrimSpace(strings.ToLower(r.FormValue("mode"))) {
	case "", "override":
		mode = services.ImportModeOverride
	case "replace":
		mode = services.ImportModeReplace
	default:
		writeJSON(w, http.StatusBadRequest, UploadResponse{Message: "invalid mode (must be override or replace)"})
		return
	}

	period := insights.Day
	if name := r.FormValue("period"); name != "" {
		if period, err = insights.ParsePeriod(name); err != nil {
			writeJSON(w, http.StatusBadRequest, UploadResponse{Message: err.Error()})
			return
		}
	}

	result, err := h.uploadService.ImportFromCSV(r.Context(), file, r.FormValue("object_id"), period, mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:         true,
		Message:         "CSV imported successfully",
		Count:           result.Count,
		MetricsAffected: result.MetricsAffected,
	})
}

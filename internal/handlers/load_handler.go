package handlers

import (
	"net/http"

	"insightquery/internal/services"
)

// LoadHandler handles POST /api/load requests
type LoadHandler struct {
	loader        *services.Loader
	rawDataFolder string
}

// NewLoadHandler creates a new LoadHandler instance
func NewLoadHandler(loader *services.Loader, rawDataFolder string) *LoadHandler {
	return &LoadHandler{
		loader:        loader,
		rawDataFolder: rawDataFolder,
	}
}

// LoadResponse represents the response from load endpoint
type LoadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Count      int    `json:"count,omitempty"`
	FilesCount int    `json:"files_count,omitempty"`
}

// Handle loads every fixture file from the configured folder
func (h *LoadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	count, filesCount, err := h.loader.LoadFromFolder(r.Context(), h.rawDataFolder)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, LoadResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, LoadResponse{
		Success:    true,
		Message:    "Data loaded successfully",
		Count:      count,
		FilesCount: filesCount,
	})
}

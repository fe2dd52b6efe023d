package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"insightquery/internal/insights"
	"insightquery/internal/services"
)

// MultiqueryHandler handles POST /method/fql.multiquery, answering batches
// from the simulator store the way the remote API would.
type MultiqueryHandler struct {
	queryService *services.QueryService
}

// NewMultiqueryHandler creates a new MultiqueryHandler instance
func NewMultiqueryHandler(queryService *services.QueryService) *MultiqueryHandler {
	return &MultiqueryHandler{queryService: queryService}
}

type apiErrorBody struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Handle handles the multiquery request
func (h *MultiqueryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{apiErrorDetail{Message: err.Error(), Type: "ParserException", Code: 601}})
		return
	}

	batch, err := decodeOrderedQueries(r.PostForm.Get("queries"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{apiErrorDetail{Message: err.Error(), Type: "ParserException", Code: 601}})
		return
	}

	body, err := h.queryService.ExecuteBatch(r.Context(), batch, r.PostForm.Get("access_token"))
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, apiErrorBody{apiErrorDetail{Message: "Error validating access token", Type: "OAuthException", Code: 190}})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, apiErrorBody{apiErrorDetail{Message: err.Error(), Type: "ParserException", Code: 601}})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// decodeOrderedQueries reads a JSON object of key to query, keeping the order
// in which keys were written.
func decodeOrderedQueries(raw string) (insights.Batch, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("queries parameter is required")
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid queries: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("queries must be a JSON object")
	}

	var batch insights.Batch
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid queries: %w", err)
		}
		key := keyTok.(string)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate query key %q", key)
		}
		seen[key] = struct{}{}

		var query string
		if err := dec.Decode(&query); err != nil {
			return nil, fmt.Errorf("query %q: %w", key, err)
		}
		batch = append(batch, insights.BatchQuery{Key: key, Query: query})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid queries: %w", err)
	}
	return batch, nil
}

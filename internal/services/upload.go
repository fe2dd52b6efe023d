package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"insightquery/internal/database"
	"insightquery/internal/insights"
	"insightquery/internal/models"
)

// ImportMode is override (upsert) or replace (delete the metric for the
// period, then insert, in one transaction).
type ImportMode string

const (
	ImportModeOverride ImportMode = "override"
	ImportModeReplace  ImportMode = "replace"
)

// UploadService handles CSV import into the simulator store.
type UploadService struct {
	db *database.DB
}

// NewUploadService creates a new UploadService.
func NewUploadService(db *database.DB) *UploadService {
	return &UploadService{db: db}
}

// ImportResult holds count and metrics affected after import.
type ImportResult struct {
	Count           int
	MetricsAffected int
}

// ImportFromCSV imports one object's values. CSV format: header
// "end_time",<metric1>,<metric2>,...; rows: end_time,value1,value2,... Empty
// cells are skipped; cells that are not JSON are stored as JSON strings.
func (u *UploadService) ImportFromCSV(ctx context.Context, reader io.Reader, objectID string, period insights.Period, mode ImportMode) (*ImportResult, error) {
	if strings.TrimSpace(objectID) == "" {
		return nil, fmt.Errorf("object_id is required")
	}
	if !period.Valid() {
		return nil, fmt.Errorf("invalid period %s", period)
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("CSV must have end_time column and at least one metric column")
	}
	if strings.TrimSpace(strings.ToLower(header[0])) != "end_time" {
		return nil, fmt.Errorf("first column must be 'end_time', got %q", header[0])
	}
	metrics := make([]string, 0, len(header)-1)
	for i := 1; i < len(header); i++ {
		metric := strings.TrimSpace(header[i])
		if metric == "" {
			return nil, fmt.Errorf("empty metric name in column %d", i+1)
		}
		metrics = append(metrics, metric)
	}

	var values []models.InsightValue
	for rowIdx, row := range records[1:] {
		if allEmpty(row) {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", rowIdx+2, len(header), len(row))
		}
		endTime, err := ParseInstant(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx+2, err)
		}
		for i, metric := range metrics {
			cell := strings.TrimSpace(row[i+1])
			if cell == "" {
				continue
			}
			values = append(values, models.InsightValue{
				ObjectID: objectID,
				Metric:   metric,
				Period:   period.Seconds(),
				EndTime:  insights.UnixTimeAtDayStart(endTime),
				Value:    cellValue(cell),
			})
		}
	}

	var count int
	if mode == ImportModeReplace {
		count, err = u.db.ReplaceMetricValues(ctx, objectID, period.Seconds(), metrics, values)
	} else {
		count, err = u.db.UpsertValues(ctx, values)
	}
	if err != nil {
		return nil, err
	}
	return &ImportResult{Count: count, MetricsAffected: len(metrics)}, nil
}

func cellValue(cell string) json.RawMessage {
	if json.Valid([]byte(cell)) {
		return json.RawMessage(cell)
	}
	quoted, _ := json.Marshal(cell)
	return quoted
}

func allEmpty(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insightquery/internal/database"
	"insightquery/internal/insights"
	"insightquery/internal/models"
)

// Loader handles loading fixture files into the simulator store
type Loader struct {
	db *database.DB
}

// NewLoader creates a new Loader instance
func NewLoader(db *database.DB) *Loader {
	return &Loader{db: db}
}

// LoadFromFile loads data from a JSON file into the database
func (l *Loader) LoadFromFile(ctx context.Context, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return l.LoadFromReader(ctx, file)
}

// LoadFromFolder loads all JSON files from a folder into the database
func (l *Loader) LoadFromFolder(ctx context.Context, folderPath string) (int, int, error) {
	startTime := time.Now()

	if !filepath.IsAbs(folderPath) {
		folderPath = filepath.Join(".", folderPath)
	}

	slog.Info("loading fixtures", slog.String("folder", folderPath))

	files, err := os.ReadDir(folderPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read folder: %w", err)
	}

	totalCount := 0
	filesCount := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}

		count, err := l.LoadFromFile(ctx, filepath.Join(folderPath, file.Name()))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to load file %s: %w", file.Name(), err)
		}
		slog.Debug("loaded fixture file", slog.String("file", file.Name()), slog.Int("records", count))

		totalCount += count
		filesCount++
	}

	slog.Info("fixtures loaded",
		slog.Int("records", totalCount),
		slog.Int("files", filesCount),
		slog.Duration("took", time.Since(startTime).Round(time.Millisecond)))

	return totalCount, filesCount, nil
}

// LoadFromReader loads one fixture document from an io.Reader into the database
func (l *Loader) LoadFromReader(ctx context.Context, reader io.Reader) (int, error) {
	var input models.JSONInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if strings.TrimSpace(input.ObjectID) == "" {
		return 0, fmt.Errorf("fixture is missing object_id")
	}
	period := insights.Day
	if input.Period != "" {
		p, err := insights.ParsePeriod(input.Period)
		if err != nil {
			return 0, err
		}
		period = p
	}

	var values []models.InsightValue
	for metric, dataPoints := range input.Result {
		for _, dp := range dataPoints {
			endTime, err := ParseInstant(dp.EndTime)
			if err != nil {
				return 0, fmt.Errorf("invalid end_time %s for metric %s: %w", dp.EndTime, metric, err)
			}
			if !json.Valid(dp.Value) {
				return 0, fmt.Errorf("invalid value for metric %s at %s", metric, dp.EndTime)
			}
			values = append(values, models.InsightValue{
				ObjectID: input.ObjectID,
				Metric:   metric,
				Period:   period.Seconds(),
				EndTime:  insights.UnixTimeAtDayStart(endTime),
				Value:    dp.Value,
			})
		}
	}

	return l.db.UpsertValues(ctx, values)
}

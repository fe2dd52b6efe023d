package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"insightquery/internal/database"
	"insightquery/internal/insights"
	"insightquery/internal/models"
)

// GenerateOptions describes a dummy data run
type GenerateOptions struct {
	ObjectID   string
	Metrics    []string
	Period     insights.Period
	Start      time.Time
	End        time.Time
	MinValue   float64
	MaxValue   float64
	Sequential bool
}

// Generator handles generating dummy insight values
type Generator struct {
	db *database.DB
}

// NewGenerator creates a new Generator instance
func NewGenerator(db *database.DB) *Generator {
	return &Generator{db: db}
}

// GenerateDummyData replaces the stored values of every requested metric with
// random values, one per period end between Start and End.
func (g *Generator) GenerateDummyData(ctx context.Context, opts GenerateOptions) (int, int, error) {
	generateStartTime := time.Now()

	metrics := insights.FilterMetrics(opts.Metrics)
	if opts.ObjectID == "" {
		return 0, 0, fmt.Errorf("object_id is required")
	}
	if len(metrics) == 0 {
		return 0, 0, fmt.Errorf("no metrics to generate")
	}
	if !opts.Period.Valid() {
		return 0, 0, fmt.Errorf("invalid period %s", opts.Period)
	}
	if opts.MinValue >= opts.MaxValue {
		return 0, 0, fmt.Errorf("invalid value range: min (%f) must be less than max (%f)", opts.MinValue, opts.MaxValue)
	}

	start := insights.NormalizeToDayStart(opts.Start)
	end := insights.NormalizeToDayStart(opts.End)
	if start.After(end) {
		return 0, 0, fmt.Errorf("invalid time range: start (%s) must not be after end (%s)", FormatDay(start), FormatDay(end))
	}

	endTimes := periodEnds(start, end, opts.Period)

	var values []models.InsightValue
	for _, metric := range metrics {
		current := opts.MinValue + rand.Float64()*(opts.MaxValue-opts.MinValue)
		for _, endTime := range endTimes {
			var v float64
			if opts.Sequential {
				// drift at most 30% from the previous value
				v = current * (1 + (rand.Float64()*2-1)*0.3)
			} else {
				v = opts.MinValue + rand.Float64()*(opts.MaxValue-opts.MinValue)
			}
			v = math.Min(math.Max(v, opts.MinValue), opts.MaxValue)
			current = v

			values = append(values, models.InsightValue{
				ObjectID: opts.ObjectID,
				Metric:   metric,
				Period:   opts.Period.Seconds(),
				EndTime:  insights.EpochSeconds(endTime),
				Value:    json.RawMessage(strconv.FormatInt(int64(math.Round(v)), 10)),
			})
		}
	}

	count, err := g.db.ReplaceMetricValues(ctx, opts.ObjectID, opts.Period.Seconds(), metrics, values)
	if err != nil {
		return 0, 0, err
	}

	slog.Info("dummy data generated",
		slog.String("objectID", opts.ObjectID),
		slog.String("period", opts.Period.String()),
		slog.Int("records", count),
		slog.Int("metrics", len(metrics)),
		slog.Duration("took", time.Since(generateStartTime).Round(time.Millisecond)))

	return count, len(metrics), nil
}

// periodEnds lists the Pacific midnights from start to end, stepping by the
// period length in days. Lifetime values have a single end time.
func periodEnds(start, end time.Time, period insights.Period) []time.Time {
	stepDays := int(period.Seconds() / (60 * 60 * 24))
	if stepDays == 0 {
		return []time.Time{end}
	}
	var out []time.Time
	for day := start; !day.After(end); day = insights.NormalizeToDayStart(day.AddDate(0, 0, stepDays)) {
		out = append(out, day)
	}
	return out
}

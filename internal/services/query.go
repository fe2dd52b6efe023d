package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"insightquery/internal/database"
	"insightquery/internal/insights"
)

// ErrInvalidToken is returned when the simulator requires an access token and
// the caller's does not match.
var ErrInvalidToken = errors.New("invalid access token")

// QueryService answers insights batches from the simulator store. It stands in
// for the remote API: the response is one array of metric values per query,
// in batch order.
type QueryService struct {
	db            *database.DB
	requiredToken string
}

var _ insights.BatchExecutor = (*QueryService)(nil)

// NewQueryService creates a new QueryService instance. An empty requiredToken
// accepts every caller.
func NewQueryService(db *database.DB, requiredToken string) *QueryService {
	return &QueryService{db: db, requiredToken: requiredToken}
}

// ExecuteBatch runs every query of the batch against the store.
func (q *QueryService) ExecuteBatch(ctx context.Context, batch insights.Batch, accessToken string) ([]byte, error) {
	if q.requiredToken != "" && accessToken != q.requiredToken {
		return nil, ErrInvalidToken
	}

	queryStartTime := time.Now()
	results := make([][]insights.MetricValue, len(batch))
	total := 0

	for i, bq := range batch {
		parsed, err := insights.ParseQuery(bq.Query)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", bq.Key, err)
		}

		values, err := q.db.QueryValues(ctx, parsed.ObjectID, parsed.Metrics, parsed.Period.Seconds(), parsed.EndTime.Unix())
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", bq.Key, err)
		}

		results[i] = make([]insights.MetricValue, 0, len(values))
		for _, v := range values {
			results[i] = append(results[i], insights.MetricValue{Metric: v.Metric, Value: v.Value})
		}
		total += len(values)
	}

	slog.Info("simulated batch answered",
		slog.Int("queries", len(batch)),
		slog.Int("values", total),
		slog.Duration("took", time.Since(queryStartTime).Round(time.Millisecond)))

	return json.Marshal(results)
}

package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// BatchExecutor runs a batch of queries in one remote call. The raw response
// must be a JSON array with one element per query, in batch order.
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, batch Batch, accessToken string) ([]byte, error)
}

// DayResult pairs a normalized day with the payload returned for it.
type DayResult struct {
	Day     time.Time
	Payload json.RawMessage
}

// Results holds one DayResult per queried day, ascending by day.
type Results []DayResult

// Lookup returns the payload for the day containing t.
func (r Results) Lookup(t time.Time) (json.RawMessage, bool) {
	day := NormalizeToDayStart(t)
	i := sort.Search(len(r), func(i int) bool {
		return !r[i].Day.Before(day)
	})
	if i < len(r) && r[i].Day.Equal(day) {
		return r[i].Payload, true
	}
	return nil, false
}

// Days returns the queried days in order.
func (r Results) Days() []time.Time {
	days := make([]time.Time, len(r))
	for i, dr := range r {
		days[i] = dr.Day
	}
	return days
}

// MetricValue is one metric/value pair inside a payload.
type MetricValue struct {
	Metric string          `json:"metric"`
	Value  json.RawMessage `json:"value"`
}

// DecodeMetrics unpacks a payload into its metric/value pairs.
func DecodeMetrics(payload json.RawMessage) ([]MetricValue, error) {
	var values []MetricValue
	if err := json.Unmarshal(payload, &values); err != nil {
		return nil, fmt.Errorf("failed to decode metric values: %w", err)
	}
	return values, nil
}

// ExecuteByInstant queries the metrics of objectID for every target-zone day
// touched by instants, in a single batch, and maps each answer back to its
// day. Errors from exec are returned as is.
func ExecuteByInstant(
	ctx context.Context,
	exec BatchExecutor,
	objectID string,
	accessToken string,
	period Period,
	metrics []string,
	instants []time.Time,
) (Results, error) {
	if err := validate(exec, objectID, period, instants); err != nil {
		return nil, err
	}

	days := NormalizeAll(instants)
	batch := BuildBatch(BuildBaseQuery(period, objectID, metrics), days)

	slog.Debug("executing insights batch",
		slog.String("objectID", objectID),
		slog.String("period", period.String()),
		slog.Int("instants", len(instants)),
		slog.Int("queries", len(batch)))

	raw, err := exec.ExecuteBatch(ctx, batch, accessToken)
	if err != nil {
		return nil, err
	}

	payloads, err := parseBatchResponse(raw, len(batch))
	if err != nil {
		return nil, err
	}

	results := make(Results, len(batch))
	for i, q := range batch {
		results[i] = DayResult{Day: q.Day, Payload: payloads[i]}
	}
	return results, nil
}

func validate(exec BatchExecutor, objectID string, period Period, instants []time.Time) error {
	var result *multierror.Error
	if exec == nil {
		result = multierror.Append(result, &ArgumentError{Arg: "executor", Reason: "is required"})
	}
	if strings.TrimSpace(objectID) == "" {
		result = multierror.Append(result, &ArgumentError{Arg: "objectID", Reason: "must not be blank"})
	}
	if !period.Valid() {
		result = multierror.Append(result, &ArgumentError{Arg: "period", Reason: fmt.Sprintf("%s is not a known period", period)})
	}
	if len(instants) == 0 {
		result = multierror.Append(result, &ArgumentError{Arg: "instants", Reason: "must not be empty"})
	}
	if result != nil {
		result.ErrorFormat = joinErrors
	}
	return result.ErrorOrNil()
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// parseBatchResponse splits a batch response into per-query payloads. Anything
// other than an array of exactly n elements is rejected.
func parseBatchResponse(raw []byte, n int) ([]json.RawMessage, error) {
	var payloads []json.RawMessage
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, &MismatchError{Requested: n, Err: fmt.Errorf("response is not a JSON array: %w", err)}
	}
	if len(payloads) != n {
		return nil, &MismatchError{Requested: n, Received: len(payloads)}
	}
	return payloads, nil
}

package models

import "encoding/json"

// InsightValue is one canned metric value served by the simulator
type InsightValue struct {
	ID       int64           `json:"id"`
	ObjectID string          `json:"object_id"`
	Metric   string          `json:"metric"`
	Period   int64           `json:"period"`   // period length in seconds
	EndTime  int64           `json:"end_time"` // Unix seconds, a Pacific midnight
	Value    json.RawMessage `json:"value"`
}

// JSONInput represents a fixture file loaded into the simulator store
type JSONInput struct {
	ObjectID string                 `json:"object_id"`
	Period   string                 `json:"period"`
	Result   map[string][]DataPoint `json:"result"` // keyed by metric name
}

// DataPoint represents a single metric value in the JSON input
type DataPoint struct {
	EndTime string          `json:"end_time"` // "2010-12-05" (Pacific) or RFC3339
	Value   json.RawMessage `json:"value"`
}

// MetricStats holds per-metric aggregate stats from the store
type MetricStats struct {
	ObjectID   string `json:"object_id"`
	Metric     string `json:"metric"`
	Count      int    `json:"count"`
	MinEndTime int64  `json:"min_end_time"`
	MaxEndTime int64  `json:"max_end_time"`
}

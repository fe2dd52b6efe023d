package models

import "encoding/json"

// InsightsResponse is the JSON body of GET /api/insights/{objectId}
type InsightsResponse struct {
	ObjectID string      `json:"object_id"`
	Period   string      `json:"period"`
	Results  []DayOutput `json:"results"`
}

// DayOutput is the result for one Pacific calendar day
type DayOutput struct {
	Day     string          `json:"day"`      // 2006-01-02
	EndTime int64           `json:"end_time"` // Unix seconds
	Data    json.RawMessage `json:"data"`
}

// ErrorResponse is returned by every endpoint on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

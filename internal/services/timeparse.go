package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"insightquery/internal/insights"
)

const dayFormat = "2006-01-02"

// ParseInstant accepts a Pacific calendar date ("2010-12-05"), an ISO 8601
// timestamp, or Unix seconds. Dates and timestamps without an offset are read
// in Pacific time.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dayFormat, s, insights.TargetLocation()); err == nil {
		return t, nil
	}

	for _, format := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	// Timestamps without an offset are wall clock time in the target zone,
	// like bare dates.
	for _, format := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(format, s, insights.TargetLocation()); err == nil {
			return t, nil
		}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

// ParseInstants parses a list of instants, skipping blank entries.
func ParseInstants(values []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		t, err := ParseInstant(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// FormatDay renders a normalized day as a Pacific calendar date.
func FormatDay(day time.Time) string {
	return day.In(insights.TargetLocation()).Format(dayFormat)
}

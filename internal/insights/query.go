package insights

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	selectClause = "SELECT metric, value FROM insights WHERE object_id='"
	endTimeField = "end_time="
)

// FilterMetrics drops blank metric names and repeats, keeping the first-seen
// order of what remains.
func FilterMetrics(metrics []string) []string {
	out := make([]string, 0, len(metrics))
	seen := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		if strings.TrimSpace(m) == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// BuildBaseQuery renders an insights query missing only its end_time value:
//
//	SELECT metric, value FROM insights WHERE object_id='1' AND metric IN ('a','b') AND period=86400 AND end_time=
//
// The metric clause is left out when no usable metric names remain.
func BuildBaseQuery(period Period, objectID string, metrics []string) string {
	var sb strings.Builder
	sb.WriteString(selectClause)
	sb.WriteString(objectID)
	sb.WriteString("' AND ")

	if filtered := FilterMetrics(metrics); len(filtered) > 0 {
		sb.WriteString("metric IN (")
		for i, m := range filtered {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\'')
			sb.WriteString(m)
			sb.WriteByte('\'')
		}
		sb.WriteString(") AND ")
	}

	sb.WriteString("period=")
	sb.WriteString(strconv.FormatInt(period.Seconds(), 10))
	sb.WriteString(" AND ")
	sb.WriteString(endTimeField)
	return sb.String()
}

// Query is a parsed, complete insights query.
type Query struct {
	ObjectID string
	Metrics  []string
	Period   Period
	EndTime  time.Time
}

var queryPattern = regexp.MustCompile(
	`^SELECT metric, value FROM insights WHERE object_id='([^']*)' AND ` +
		`(?:metric IN \(([^)]*)\) AND )?period=(\d+) AND end_time=(-?\d+)$`)

// ParseQuery reads back a query produced by BuildBaseQuery plus an end time.
// Metric names containing a comma, a quote or a closing parenthesis cannot be
// read back; BuildBaseQuery does not escape them.
func ParseQuery(q string) (Query, error) {
	m := queryPattern.FindStringSubmatch(strings.TrimSpace(q))
	if m == nil {
		return Query{}, fmt.Errorf("unrecognized insights query: %q", q)
	}

	secs, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Query{}, fmt.Errorf("invalid period: %w", err)
	}
	period, ok := periodForSeconds(secs)
	if !ok {
		return Query{}, fmt.Errorf("unsupported period %d", secs)
	}

	endTime, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Query{}, fmt.Errorf("invalid end_time: %w", err)
	}

	var metrics []string
	if m[2] != "" {
		for _, quoted := range strings.Split(m[2], ",") {
			name := strings.TrimSpace(quoted)
			if len(name) < 2 || name[0] != '\'' || name[len(name)-1] != '\'' {
				return Query{}, fmt.Errorf("malformed metric list %q", m[2])
			}
			metrics = append(metrics, name[1:len(name)-1])
		}
	}

	return Query{
		ObjectID: m[1],
		Metrics:  metrics,
		Period:   period,
		EndTime:  time.Unix(endTime, 0).In(targetLocation),
	}, nil
}

package insights

import (
	"fmt"
	"strings"
)

// Period is the aggregation granularity of an insights query.
type Period int

const (
	Day Period = iota + 1
	Week
	Days28
	Month
	Lifetime
)

var periods = []struct {
	period  Period
	name    string
	seconds int64
}{
	{Day, "day", 60 * 60 * 24},
	{Week, "week", 60 * 60 * 24 * 7},
	{Days28, "days_28", 60 * 60 * 24 * 28},
	{Month, "month", 2592000},
	{Lifetime, "lifetime", 0},
}

// Valid reports whether p is one of the defined periods.
func (p Period) Valid() bool {
	return p >= Day && p <= Lifetime
}

// Seconds returns the period length the remote query language expects.
func (p Period) Seconds() int64 {
	if !p.Valid() {
		return 0
	}
	return periods[p-1].seconds
}

// String returns the remote API name of the period.
func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periods[p-1].name
}

// ParsePeriod converts a period name such as "day" or "days_28".
func ParsePeriod(name string) (Period, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range periods {
		if p.name == n {
			return p.period, nil
		}
	}
	return 0, fmt.Errorf("unknown period %q", name)
}

// periodForSeconds maps a rendered period constant back to its Period.
func periodForSeconds(secs int64) (Period, bool) {
	for _, p := range periods {
		if p.seconds == secs {
			return p.period, true
		}
	}
	return 0, false
}

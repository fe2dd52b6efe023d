package insights

import (
	"slices"
	"time"
	_ "time/tzdata"
)

// targetZone is the zone whose calendar days the remote API reports on.
const targetZone = "America/Los_Angeles"

var targetLocation = mustLoadLocation(targetZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("insights: cannot load location " + name + ": " + err.Error())
	}
	return loc
}

// TargetLocation returns the fixed zone used for day boundaries.
func TargetLocation() *time.Location {
	return targetLocation
}

// NormalizeToDayStart returns midnight, in the target zone, of the target-zone
// calendar day that contains t. Instants on the same day normalize to identical
// values, so the result can be compared with == and used as a map key.
func NormalizeToDayStart(t time.Time) time.Time {
	y, m, d := t.In(targetLocation).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, targetLocation)
}

// NormalizeAll normalizes every instant, drops duplicate days and returns the
// days in ascending order.
func NormalizeAll(ts []time.Time) []time.Time {
	seen := make(map[int64]struct{}, len(ts))
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		day := NormalizeToDayStart(t)
		key := day.Unix()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, day)
	}
	slices.SortFunc(out, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return out
}

// EpochSeconds returns whole seconds since the Unix epoch. It is meant for
// instants that have already been normalized.
func EpochSeconds(t time.Time) int64 {
	return t.Unix()
}

// UnixTimeAtDayStart is the epoch-seconds value of t's target-zone midnight,
// which is the end_time the remote API expects for a daily query.
func UnixTimeAtDayStart(t time.Time) int64 {
	return EpochSeconds(NormalizeToDayStart(t))
}

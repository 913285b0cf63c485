// Package query provides pure filtering and ordering over session slices.
// Inputs are never mutated; every function returns a fresh slice.
package query

import (
	"sort"
	"time"

	"colloscope/internal/model"
)

// SortByTime returns the sessions ordered ascending by start instant.
// The sort is stable: sessions sharing a start keep their table order.
func SortByTime(colles []model.Colle) []model.Colle {
	out := make([]model.Colle, len(colles))
	copy(out, colles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// ForGroup returns the sessions whose group matches exactly
// (case-sensitive), preserving input order.
func ForGroup(colles []model.Colle, group string) []model.Colle {
	out := make([]model.Colle, 0, len(colles))
	for _, c := range colles {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out
}

// Upcoming returns at most limit sessions for the given group starting at
// or after now, ordered ascending by start. A limit of zero or less means
// no truncation. Sessions whose date falls inside a holiday range are
// excluded: those slots do not occur.
//
// An empty result is not an error; presentation is the caller's concern.
func Upcoming(colles []model.Colle, group string, now time.Time, limit int, holidays []model.HolidayRange) []model.Colle {
	out := make([]model.Colle, 0, max(limit, 0))
	for _, c := range SortByTime(ForGroup(colles, group)) {
		if c.Start.Before(now) {
			continue
		}
		if model.InHolidays(holidays, c.Start) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

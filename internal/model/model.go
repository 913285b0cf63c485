package model

import (
	"fmt"
	"time"
)

// Colle represents a single scheduled slot: one group, one subject, one
// concrete start instant. Instances are built once during load and never
// mutated afterwards; queries and exports work on copies of the slice.
type Colle struct {
	Subject   string
	Professor string
	Classroom string

	// Group is the short group code exactly as stored in the source
	// table (digit run extracted from the cell, e.g. "3").
	Group string

	// Start is the concrete calendar date plus start time, reconstructed
	// from the table's date column label rather than the day-of-week
	// column, so holiday weeks never shift later sessions.
	Start time.Time
}

// Key identifies a slot occupancy. Two colles sharing a key within one
// colloscope indicate malformed source data.
func (c Colle) Key() string {
	return c.Group + "|" + c.Start.Format(time.RFC3339)
}

// Date returns the calendar date of the session (midnight, same location).
func (c Colle) Date() time.Time {
	y, m, d := c.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Start.Location())
}

// ClockTime formats the start time for display, e.g. "8h00".
func (c Colle) ClockTime() string {
	return fmt.Sprintf("%dh%02d", c.Start.Hour(), c.Start.Minute())
}

// LongDate formats the session date in long French form,
// e.g. "lundi 5 septembre 2024".
func (c Colle) LongDate() string {
	return fmt.Sprintf("%s %d %s %d",
		frenchWeekdays[c.Start.Weekday()],
		c.Start.Day(),
		frenchMonths[c.Start.Month()-1],
		c.Start.Year(),
	)
}

var frenchWeekdays = [7]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

var frenchMonths = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// HolidayRange is a date interval (inclusive on both ends) with no
// scheduled sessions. Sessions falling inside a range are excluded from
// upcoming-session queries; grid rendering marks the skipped weeks instead
// of omitting them.
type HolidayRange struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of t falls inside the range.
// Only the date matters; intra-day times are ignored.
func (h HolidayRange) Contains(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return !day.Before(dateOnly(h.Start)) && !day.After(dateOnly(h.End))
}

// InHolidays reports whether t falls inside any of the given ranges.
func InHolidays(holidays []HolidayRange, t time.Time) bool {
	for _, h := range holidays {
		if h.Contains(t) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Colloscope aggregates the full schedule of one class for a term.
//
// A Colloscope is immutable once built: a scheduled refresh produces a new
// instance and swaps it into the store wholesale, so concurrent readers
// never need locking.
type Colloscope struct {
	// Class is the lower-cased class identifier (file base name).
	Class string

	// Colles holds all sessions in table order. Table order is not
	// assumed chronological; callers sort as needed.
	Colles []Colle

	// Groups is the sorted set of distinct group codes seen in Colles.
	Groups []string

	// Holidays is the configured set of excluded date ranges.
	Holidays []HolidayRange
}

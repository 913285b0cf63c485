// Package export renders a pre-filtered, pre-sorted session slice into one
// of the supported output formats. Every format is a pure projection: no
// re-filtering, no re-sorting, no I/O beyond the caller-supplied writer.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"colloscope/internal/model"
)

// Format is the closed set of supported export formats.
type Format string

const (
	// FormatGrid is the paginated printable schedule, emitted as HTML
	// pages; rasterization to images is the capture package's job.
	FormatGrid Format = "grid"
	// FormatFlat is one CSV row per session.
	FormatFlat Format = "flat"
	// FormatAgenda is an iCalendar feed, one VEVENT per session.
	FormatAgenda Format = "agenda"
	// FormatTaskList is a Todoist import CSV, one task per session due at
	// session start.
	FormatTaskList Format = "task-list"
)

var (
	// ErrUnsupportedFormat reports a format outside the closed set.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	// ErrNoSessions reports an empty filtered session list. Callers
	// present this as "nothing found", distinct from a real failure.
	ErrNoSessions = errors.New("export: no matching sessions")
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatGrid, FormatFlat, FormatAgenda, FormatTaskList:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Engine holds the rendering policy shared by all formats. The zero value
// is usable: missing durations fall back to one hour, grid pagination to
// eight weeks per page.
type Engine struct {
	// DefaultDuration is the agenda entry length for subjects without an
	// override.
	DefaultDuration time.Duration

	// Durations overrides the entry length per subject.
	Durations map[string]time.Duration

	// WeeksPerPage bounds how many calendar weeks one grid page holds.
	WeeksPerPage int
}

// Render writes the sessions in the requested format. colles must already
// be filtered to the group and sorted ascending by start; Render trusts
// that ordering.
func (e *Engine) Render(format Format, colles []model.Colle, group string, holidays []model.HolidayRange, w io.Writer) error {
	if len(colles) == 0 {
		return ErrNoSessions
	}

	switch format {
	case FormatFlat:
		return renderFlat(colles, w)
	case FormatAgenda:
		return e.renderAgenda(colles, group, w)
	case FormatTaskList:
		return renderTaskList(colles, group, w)
	case FormatGrid:
		return RenderGridHTML(w, group, e.BuildGrid(colles, group, holidays))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// duration returns the agenda entry length for a subject.
func (e *Engine) duration(subject string) time.Duration {
	if d, ok := e.Durations[subject]; ok && d > 0 {
		return d
	}
	if e.DefaultDuration > 0 {
		return e.DefaultDuration
	}
	return time.Hour
}

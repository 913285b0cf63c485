package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"colloscope/internal/model"
)

// GridRow is one line of the printable schedule: either a session or a
// holiday marker standing in for a skipped week.
type GridRow struct {
	Holiday bool
	Label   string // holiday name when Holiday is set

	Date      string
	Time      string
	Subject   string
	Professor string
	Room      string
}

// GridPage is one printable page. Pages are the intermediate
// representation consumed by the capture pipeline, which turns each page
// into a fixed-size image.
type GridPage struct {
	Index int // 1-based
	Total int
	Group string
	Title string
	Rows  []GridRow
}

//go:embed grid.tmpl
var gridTemplateFS embed.FS

var gridTemplate = template.Must(template.ParseFS(gridTemplateFS, "grid.tmpl"))

// BuildGrid lays the sessions out week by week. colles must already be
// sorted ascending by start. Weeks fully covered by a holiday range are
// kept as a single marked row so the week rhythm stays visible; pages
// hold at most WeeksPerPage weeks.
func (e *Engine) BuildGrid(colles []model.Colle, group string, holidays []model.HolidayRange) []GridPage {
	if len(colles) == 0 {
		return nil
	}

	weeksPerPage := e.WeeksPerPage
	if weeksPerPage <= 0 {
		weeksPerPage = 8
	}

	first := startOfWeek(colles[0].Start)
	last := startOfWeek(colles[len(colles)-1].Start)

	var pages []GridPage
	var current GridPage
	weeksOnPage := 0

	flush := func() {
		if len(current.Rows) > 0 {
			pages = append(pages, current)
		}
		current = GridPage{}
		weeksOnPage = 0
	}

	i := 0
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		weekEnd := week.AddDate(0, 0, 7)

		var rows []GridRow
		for i < len(colles) && colles[i].Start.Before(weekEnd) {
			c := colles[i]
			rows = append(rows, GridRow{
				Date:      c.LongDate(),
				Time:      c.ClockTime(),
				Subject:   c.Subject,
				Professor: c.Professor,
				Room:      c.Classroom,
			})
			i++
		}

		if len(rows) == 0 {
			if name, ok := holidayOverlapping(holidays, week, weekEnd); ok {
				rows = []GridRow{{Holiday: true, Label: name}}
			} else {
				// Empty regular week: nothing scheduled, nothing shown.
				continue
			}
		}

		current.Rows = append(current.Rows, rows...)
		weeksOnPage++
		if weeksOnPage >= weeksPerPage {
			flush()
		}
	}
	flush()

	for idx := range pages {
		pages[idx].Index = idx + 1
		pages[idx].Total = len(pages)
		pages[idx].Group = group
		pages[idx].Title = fmt.Sprintf("Colloscope groupe %s", group)
	}
	return pages
}

// RenderGridHTML writes the pages as a single HTML document. The root
// element carries data-ready="true" once templated, which is what the
// capture pipeline waits on before screenshotting.
func RenderGridHTML(w io.Writer, group string, pages []GridPage) error {
	data := struct {
		Group string
		Pages []GridPage
	}{Group: group, Pages: pages}
	return gridTemplate.Execute(w, data)
}

// holidayOverlapping reports the first holiday range intersecting
// [weekStart, weekEnd).
func holidayOverlapping(holidays []model.HolidayRange, weekStart, weekEnd time.Time) (string, bool) {
	for _, h := range holidays {
		if h.Start.Before(weekEnd) && !h.End.Before(weekStart) {
			return h.Name, true
		}
	}
	return "", false
}

// startOfWeek truncates t to the Monday of its week, midnight.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

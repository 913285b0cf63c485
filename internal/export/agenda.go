package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"colloscope/internal/model"
)

// renderAgenda emits an iCalendar feed with one VEVENT per session. No
// merging, no recurrence: every session is its own dated entry, with the
// end computed from the per-subject (or default) duration.
func (e *Engine) renderAgenda(colles []model.Colle, group string, w io.Writer) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//colloscope//agenda//FR")
	cal.SetName(fmt.Sprintf("Colloscope groupe %s", group))

	now := time.Now().UTC()

	for _, c := range colles {
		// (group, start) is unique within a colloscope, so it makes a
		// stable UID.
		uid := fmt.Sprintf("colle-%s-%s@colloscope", c.Group, c.Start.Format("20060102T150405"))

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now)
		ev.SetStartAt(c.Start)
		ev.SetEndAt(c.Start.Add(e.duration(c.Subject)))
		ev.SetSummary(fmt.Sprintf("Colle de %s", c.Subject))
		ev.SetLocation(fmt.Sprintf("Salle %s", c.Classroom))
		ev.SetDescription(fmt.Sprintf("Colle de %s avec %s (groupe %s)", c.Subject, c.Professor, c.Group))
	}

	return cal.SerializeTo(w)
}

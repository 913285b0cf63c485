package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"colloscope/internal/model"
)

// todoistRow follows the Todoist CSV import template. Column names and
// order are fixed by that format.
type todoistRow struct {
	Type        string `csv:"TYPE"`
	Content     string `csv:"CONTENT"`
	Priority    string `csv:"PRIORITY"`
	Indent      string `csv:"INDENT"`
	Author      string `csv:"AUTHOR"`
	Responsible string `csv:"RESPONSIBLE"`
	Date        string `csv:"DATE"`
	DateLang    string `csv:"DATE_LANG"`
	Timezone    string `csv:"TIMEZONE"`
}

const todoistDateLayout = "02/01/2006 15:04"

// renderTaskList emits a Todoist import CSV with one task per session,
// due at session start.
func renderTaskList(colles []model.Colle, group string, w io.Writer) error {
	rows := make([]todoistRow, 0, len(colles))
	for _, c := range colles {
		rows = append(rows, todoistRow{
			Type:     "task",
			Content:  fmt.Sprintf("Colle de %s (groupe %s, salle %s)", c.Subject, group, c.Classroom),
			Priority: "1",
			Indent:   "1",
			Date:     c.Start.Format(todoistDateLayout),
			DateLang: "fr",
			Timezone: c.Start.Location().String(),
		})
	}
	return gocsv.Marshal(&rows, w)
}

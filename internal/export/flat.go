package export

import (
	"io"

	"github.com/gocarina/gocsv"

	"colloscope/internal/model"
)

// FlatRow is one machine-parseable export line. Column order is fixed:
// date, time, subject, professor, room.
type FlatRow struct {
	Date      string `csv:"date"`
	Time      string `csv:"heure"`
	Subject   string `csv:"matiere"`
	Professor string `csv:"prof"`
	Room      string `csv:"salle"`
}

const (
	flatDateLayout = "02/01/2006"
	flatTimeLayout = "15:04"
)

func renderFlat(colles []model.Colle, w io.Writer) error {
	rows := make([]FlatRow, 0, len(colles))
	for _, c := range colles {
		rows = append(rows, FlatRow{
			Date:      c.Start.Format(flatDateLayout),
			Time:      c.Start.Format(flatTimeLayout),
			Subject:   c.Subject,
			Professor: c.Professor,
			Room:      c.Classroom,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// ParseFlat reads back a flat export. It exists for consumers that
// round-trip the CSV (and keeps the format honest in tests).
func ParseFlat(r io.Reader) ([]FlatRow, error) {
	var rows []FlatRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

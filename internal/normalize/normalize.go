// Package normalize turns a raw, human-edited colloscope spreadsheet
// export into the canonical tabular form the model loader consumes.
//
// The supported input layout is a fixed format contract (v1):
//
//	row 0..2   metadata (ignored)
//	row 3      header row; columns at index >= 5 carry date labels
//	row 4      legend row (ignored)
//	row 5..    session data
//
// A layout change in the published export is a contract version bump, not
// something this package adapts to silently.
package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Format contract v1 offsets.
const (
	headerRowIndex = 3 // rows before this are metadata
	dataRowIndex   = 5 // first session data row (row 4 is a legend row)
	minHeaderRows  = 4 // below this there is not enough header context
	dateColumnMin  = 5 // first column that can carry a date label

	// Leading data columns in the raw export.
	rawColSubject   = 0
	rawColProfessor = 1
	rawColRoom      = 2
	rawColDay       = 3
	rawColHour      = 4
)

// CanonicalPrefix is the fixed leading header of the canonical table,
// before the per-date columns.
var CanonicalPrefix = []string{"Matiere", "Prof", "Jour", "Heure", "Salle"}

// groupPattern extracts the first digit run from a free-text cell such as
// "Groupe 3" or "G.12 (rattrapage)".
var groupPattern = regexp.MustCompile(`(\d+)`)

// Normalize converts raw export rows into canonical rows (header first).
//
// The function is pure and total: inputs with fewer than 4 rows yield an
// empty result (a documented degenerate case of the source, not an
// error), and malformed data rows are dropped rather than reported. Cells
// under a date column keep only the embedded group number; a cell with no
// digits becomes the empty string.
func Normalize(rows [][]string) [][]string {
	if len(rows) < minHeaderRows {
		return nil
	}

	header := rows[headerRowIndex]
	var data [][]string
	if len(rows) > dataRowIndex {
		data = rows[dataRowIndex:]
	}

	// Collect date columns: every non-empty header cell at index >= 5,
	// original order preserved. Dash-separated D-M-Y labels are rewritten
	// to D/M/YY; anything else is carried through verbatim.
	dateLabels := make([]string, 0, len(header))
	validIndices := make([]int, 0, len(header))
	for i, column := range header {
		if i < dateColumnMin || column == "" {
			continue
		}
		dateLabels = append(dateLabels, reformatDateLabel(column))
		validIndices = append(validIndices, i)
	}

	out := make([][]string, 0, len(data)+1)
	out = append(out, append(append([]string{}, CanonicalPrefix...), dateLabels...))

	for _, line := range data {
		if isBlank(line) {
			continue
		}
		if len(line) < dateColumnMin {
			// Not enough identifying fields; dropped by contract.
			continue
		}

		hour := strings.ReplaceAll(strings.SplitN(line[rawColHour], "-", 2)[0], " ", "")

		row := make([]string, 0, dateColumnMin+len(validIndices))
		row = append(row,
			line[rawColSubject],
			line[rawColProfessor],
			line[rawColDay],
			hour,
			line[rawColRoom],
		)

		for _, index := range validIndices {
			if index < len(line) {
				row = append(row, extractGroup(line[index]))
			} else {
				row = append(row, "")
			}
		}

		out = append(out, row)
	}

	return out
}

// reformatDateLabel rewrites a dash-separated D-M-Y label to D/M/YY,
// truncating a 4-digit year to its last two digits. Labels in any other
// shape are returned unchanged.
func reformatDateLabel(label string) string {
	parts := strings.Split(label, "-")
	if len(parts) != 3 {
		return label
	}
	year := parts[2]
	if len(year) == 4 {
		year = year[2:]
	}
	return fmt.Sprintf("%s/%s/%s", parts[0], parts[1], year)
}

// extractGroup returns the first digit run embedded in a cell, or ""
// when the cell carries no digits.
func extractGroup(cell string) string {
	return groupPattern.FindString(cell)
}

func isBlank(line []string) bool {
	for _, field := range line {
		if field != "" {
			return false
		}
	}
	return true
}

// ReadCSV reads comma-delimited UTF-8 rows with variable field counts.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("normalize: read raw csv: %w", err)
	}
	return rows, nil
}

// WriteCSV writes canonical rows as comma-delimited UTF-8.
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("normalize: write canonical csv: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

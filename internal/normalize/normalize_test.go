package normalize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawTable builds a minimal v1-format export: 3 metadata rows, a header
// row, one legend row, then the given data rows.
func rawTable(header []string, data ...[]string) [][]string {
	rows := [][]string{
		{"Colloscope MPI", "", ""},
		{""},
		{""},
		header,
		{"légende", "G = groupe"},
	}
	return append(rows, data...)
}

func TestNormalizeHeader(t *testing.T) {
	rows := rawTable(
		[]string{"Matière", "Professeur", "Salle", "Jour", "Heure", "05-09-2024", "12-09-2024"},
	)

	out := Normalize(rows)
	require.Len(t, out, 1)

	header := out[0]
	require.Len(t, header, 7)
	assert.Equal(t, CanonicalPrefix, header[:5])
	assert.Equal(t, "05/09/24", header[5])
	assert.Equal(t, "12/09/24", header[6])
}

func TestNormalizeHeaderKeepsUnparseableLabels(t *testing.T) {
	rows := rawTable(
		[]string{"", "", "", "", "", "Semaine A", "05-09-24", "", "19-09-2024"},
	)

	out := Normalize(rows)
	require.Len(t, out, 1)

	// Empty header columns vanish; odd labels are carried verbatim.
	assert.Equal(t, []string{"Semaine A", "05/09/24", "19/09/24"}, out[0][5:])
}

func TestNormalizeTooFewRows(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([][]string{{"a"}, {"b"}, {"c"}}))
}

func TestNormalizeDataRow(t *testing.T) {
	rows := rawTable(
		[]string{"", "", "", "", "", "05-09-2024", "12-09-2024"},
		[]string{"Math", "Dupont", "101", "Lundi", "8h - 9h", "Groupe 1", "Groupe 2"},
	)

	out := Normalize(rows)
	require.Len(t, out, 2)

	assert.Equal(t, []string{"Math", "Dupont", "Lundi", "8h", "101", "1", "2"}, out[1])
}

func TestNormalizeGroupExtraction(t *testing.T) {
	rows := rawTable(
		[]string{"", "", "", "", "", "05-09-2024", "12-09-2024", "19-09-2024"},
		// "Groupe 12" keeps only the digit run; a digit-free cell goes
		// empty; a row shorter than the last date column pads with "".
		[]string{"Math", "Dupont", "101", "Lundi", "8h-9h", "Groupe 12", "aucun"},
	)

	out := Normalize(rows)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"12", "", ""}, out[1][5:])
}

func TestNormalizeDropsMalformedRows(t *testing.T) {
	rows := rawTable(
		[]string{"", "", "", "", "", "05-09-2024"},
		[]string{},
		[]string{"", "", ""},
		[]string{"Math", "Dupont", "101"}, // fewer than 5 leading fields
		[]string{"Physique", "Martin", "202", "Mardi", "17h-18h", "Groupe 3"},
	)

	out := Normalize(rows)
	require.Len(t, out, 2, "only the header and the one valid data row survive")
	assert.Equal(t, "Physique", out[1][0])
	assert.Equal(t, "17h", out[1][3])
}

func TestCSVRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Matiere", "Prof", "Jour", "Heure", "Salle", "05/09/24"},
		{"Math", "Dupont", "Lundi", "8h", "101", "1"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

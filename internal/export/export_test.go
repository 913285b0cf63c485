package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colloscope/internal/model"
)

func testColles() []model.Colle {
	loc := time.UTC
	return []model.Colle{
		{
			Subject: "Math", Professor: "Dupont", Classroom: "101", Group: "3",
			Start: time.Date(2024, 9, 5, 8, 0, 0, 0, loc),
		},
		{
			Subject: "Physique", Professor: "Martin", Classroom: "202", Group: "3",
			Start: time.Date(2024, 9, 26, 17, 30, 0, 0, loc),
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"grid", "flat", "agenda", "task-list"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderEmptyIsNoSessions(t *testing.T) {
	var e Engine
	err := e.Render(FormatFlat, nil, "3", nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoSessions)
}

func TestFlatRoundTrip(t *testing.T) {
	var e Engine
	var buf bytes.Buffer
	require.NoError(t, e.Render(FormatFlat, testColles(), "3", nil, &buf))

	rows, err := ParseFlat(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, FlatRow{
		Date: "05/09/2024", Time: "08:00",
		Subject: "Math", Professor: "Dupont", Room: "101",
	}, rows[0])
	assert.Equal(t, FlatRow{
		Date: "26/09/2024", Time: "17:30",
		Subject: "Physique", Professor: "Martin", Room: "202",
	}, rows[1])
}

func TestAgenda(t *testing.T) {
	e := Engine{
		DefaultDuration: time.Hour,
		Durations:       map[string]time.Duration{"Math": 55 * time.Minute},
	}

	var buf bytes.Buffer
	require.NoError(t, e.Render(FormatAgenda, testColles(), "3", nil, &buf))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"), "one entry per session, no merging")
	assert.Contains(t, out, "SUMMARY:Colle de Math")
	assert.Contains(t, out, "LOCATION:Salle 101")
	assert.Contains(t, out, "UID:colle-3-20240905T080000@colloscope")
	// Math runs 55 minutes from 08:00 UTC.
	assert.Contains(t, out, "DTSTART:20240905T080000Z")
	assert.Contains(t, out, "DTEND:20240905T085500Z")
}

func TestTaskList(t *testing.T) {
	var e Engine
	var buf bytes.Buffer
	require.NoError(t, e.Render(FormatTaskList, testColles(), "3", nil, &buf))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "TYPE,CONTENT,PRIORITY,INDENT,AUTHOR,RESPONSIBLE,DATE,DATE_LANG,TIMEZONE", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "task")
	assert.Contains(t, lines[1], "Colle de Math (groupe 3, salle 101)")
	assert.Contains(t, lines[1], "05/09/2024 08:00")
	assert.Contains(t, lines[1], "fr")
}

func TestBuildGridPaginationAndHolidays(t *testing.T) {
	e := Engine{WeeksPerPage: 2}
	holidays := []model.HolidayRange{{
		Name:  "Toussaint",
		Start: time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 9, 22, 0, 0, 0, 0, time.UTC),
	}}

	pages := e.BuildGrid(testColles(), "3", holidays)
	require.Len(t, pages, 2)

	// Week of Sep 2 holds Math; weeks of Sep 9 and 16 are holiday
	// markers; week of Sep 23 holds Physique.
	require.Len(t, pages[0].Rows, 2)
	assert.Equal(t, "Math", pages[0].Rows[0].Subject)
	assert.True(t, pages[0].Rows[1].Holiday)
	assert.Equal(t, "Toussaint", pages[0].Rows[1].Label)

	require.Len(t, pages[1].Rows, 2)
	assert.True(t, pages[1].Rows[0].Holiday)
	assert.Equal(t, "Physique", pages[1].Rows[1].Subject)

	assert.Equal(t, 1, pages[0].Index)
	assert.Equal(t, 2, pages[0].Total)
	assert.Equal(t, "3", pages[0].Group)
}

func TestBuildGridSkipsIdleWeeksOutsideHolidays(t *testing.T) {
	e := Engine{WeeksPerPage: 8}
	pages := e.BuildGrid(testColles(), "3", nil)

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Rows, 2, "idle non-holiday weeks add no rows")
}

func TestRenderGridHTML(t *testing.T) {
	e := Engine{WeeksPerPage: 8}
	var buf bytes.Buffer
	require.NoError(t, e.Render(FormatGrid, testColles(), "3", nil, &buf))
	out := buf.String()

	assert.Contains(t, out, `data-ready="true"`)
	assert.Contains(t, out, "Colloscope groupe 3")
	assert.Contains(t, out, "Dupont")
	assert.Contains(t, out, "jeudi 5 septembre 2024")
	assert.Contains(t, out, "17h30")
}

package model_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colloscope/internal/model"
	"colloscope/internal/normalize"
	"colloscope/internal/query"
)

// TestRawExportToUpcoming drives the full pipeline: raw export rows ->
// normalizer -> canonical CSV -> model -> upcoming query.
func TestRawExportToUpcoming(t *testing.T) {
	// Six rows total: metadata, header, legend, one data row.
	raw := [][]string{
		{"Colloscope MPI 2024-2025"},
		{""},
		{""},
		{"Matière", "Professeur", "Salle", "Jour", "Heure", "05-09-2024", "12-09-2024"},
		{"légende"},
		{"Math", "Dupont", "101", "Lundi", "8h-9h", "Groupe 1", "Groupe 2"},
	}

	canonical := normalize.Normalize(raw)
	require.Len(t, canonical, 2)

	var buf bytes.Buffer
	require.NoError(t, normalize.WriteCSV(&buf, canonical))

	loc := time.UTC
	c, err := model.Load(&buf, "mpi", nil, loc)
	require.NoError(t, err)
	require.Len(t, c.Colles, 2)
	assert.Equal(t, []string{"1", "2"}, c.Groups)

	now := time.Date(2024, 9, 1, 0, 0, 0, 0, loc)
	upcoming := query.Upcoming(c.Colles, "1", now, 5, c.Holidays)

	require.Len(t, upcoming, 1)
	colle := upcoming[0]
	assert.Equal(t, "Math", colle.Subject)
	assert.Equal(t, "Dupont", colle.Professor)
	assert.Equal(t, "101", colle.Classroom)
	assert.Equal(t, "1", colle.Group)
	assert.Equal(t, time.Date(2024, 9, 5, 8, 0, 0, 0, loc), colle.Start)
}

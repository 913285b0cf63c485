package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `listen: "0.0.0.0:9090"
timezone: "Europe/Paris"
data_dir: "/srv/colloscopes"
refresh: "30 6 * * *"
default_duration_minutes: 55
durations:
  Math: 50
holidays:
  - name: "Toussaint"
    start: "2024-10-19"
    end: "2024-11-03"
sources:
  - class: "mpi"
    url: "https://example.invalid/mpi.csv"
grid:
  weeks_per_page: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Listen)
	assert.Equal(t, "/srv/colloscopes", cfg.DataDir)
	assert.Equal(t, "30 6 * * *", cfg.RefreshCron)
	assert.Equal(t, 55, cfg.DefaultDurationMinutes)
	assert.Equal(t, 50, cfg.Durations["Math"])
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "mpi", cfg.Sources[0].Class)
	assert.Equal(t, 4, cfg.Grid.WeeksPerPage)
	// Unset grid geometry falls back to defaults.
	assert.Equal(t, 1240, cfg.Grid.Width)
	assert.Equal(t, 1754, cfg.Grid.Height)
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, 60, cfg.DefaultDurationMinutes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestHolidayRanges(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Holidays = []HolidayConfig{
		{Name: "Noël", Start: "2024-12-21", End: "2025-01-05"},
	}

	ranges, err := cfg.HolidayRanges(loc)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "Noël", ranges[0].Name)
	assert.Equal(t, time.Date(2024, 12, 21, 0, 0, 0, 0, loc), ranges[0].Start)

	cfg.Holidays = []HolidayConfig{{Name: "bad", Start: "21/12/2024", End: "2025-01-05"}}
	_, err = cfg.HolidayRanges(loc)
	assert.Error(t, err)

	cfg.Holidays = []HolidayConfig{{Name: "inverted", Start: "2025-01-05", End: "2024-12-21"}}
	_, err = cfg.HolidayRanges(loc)
	assert.Error(t, err)
}

func TestSubjectDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultDurationMinutes = 55
	cfg.Durations = map[string]int{"Math": 50, "Anglais": 0}

	def, bySubject := cfg.SubjectDurations()
	assert.Equal(t, 55*time.Minute, def)
	assert.Equal(t, 50*time.Minute, bySubject["Math"])
	_, ok := bySubject["Anglais"]
	assert.False(t, ok, "non-positive overrides are dropped")
}

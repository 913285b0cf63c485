package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"colloscope/internal/model"
)

// SourceConfig describes one raw colloscope export to download and
// normalize into the data directory.
type SourceConfig struct {
	// Class is the class identifier; it becomes the canonical CSV base
	// name under DataDir.
	Class string `yaml:"class" json:"class"`
	// URL is the raw export endpoint (the published spreadsheet CSV).
	URL string `yaml:"url" json:"url"`
}

// HolidayConfig is one excluded date range, dates in "2006-01-02" form,
// inclusive on both ends.
type HolidayConfig struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// GridConfig controls grid pagination and rasterization geometry.
type GridConfig struct {
	// WeeksPerPage is the number of calendar weeks laid out per page.
	WeeksPerPage int `yaml:"weeks_per_page" json:"weeks_per_page"`
	// Width / Height are the capture viewport in pixels (A4-ish portrait
	// by default).
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and grid page.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone sessions are scheduled in
	// (e.g. "Europe/Paris").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataDir is the directory of per-class canonical CSV files.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// RefreshCron is a cron-style schedule string (e.g. "0 7 * * *")
	// for the periodic re-download + reload cycle.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultDurationMinutes is the agenda entry length used when a
	// subject has no entry in Durations.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`

	// Durations overrides the session length per subject, in minutes.
	Durations map[string]int `yaml:"durations" json:"durations"`

	// Holidays lists the date ranges excluded from upcoming queries and
	// marked in grid output.
	Holidays []HolidayConfig `yaml:"holidays" json:"holidays"`

	// Sources lists the raw exports to download and normalize.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	Grid GridConfig `yaml:"grid" json:"grid"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                 "127.0.0.1:8080",
		Timezone:               "Europe/Paris",
		DataDir:                "./data/colloscopes",
		RefreshCron:            "0 7 * * *",
		DefaultDurationMinutes: 60,
		Durations:              map[string]int{},
		Holidays:               []HolidayConfig{},
		Sources:                []SourceConfig{},
		Grid: GridConfig{
			WeeksPerPage: 8,
			Width:        1240,
			Height:       1754,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Paris"
	}
	if c.DataDir == "" {
		c.DataDir = "./data/colloscopes"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 7 * * *"
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = 60
	}
	if c.Durations == nil {
		c.Durations = map[string]int{}
	}
	if c.Holidays == nil {
		c.Holidays = []HolidayConfig{}
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	if c.Grid.WeeksPerPage <= 0 {
		c.Grid.WeeksPerPage = 8
	}
	if c.Grid.Width <= 0 {
		c.Grid.Width = 1240
	}
	if c.Grid.Height <= 0 {
		c.Grid.Height = 1754
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HolidayRanges parses the configured holiday intervals into model ranges
// in the given location. An unparseable or inverted range is an error:
// silently dropping one would shift upcoming-session results.
func (c *Config) HolidayRanges(loc *time.Location) ([]model.HolidayRange, error) {
	out := make([]model.HolidayRange, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		start, err := time.ParseInLocation("2006-01-02", h.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("config: holiday %q: bad start %q: %w", h.Name, h.Start, err)
		}
		end, err := time.ParseInLocation("2006-01-02", h.End, loc)
		if err != nil {
			return nil, fmt.Errorf("config: holiday %q: bad end %q: %w", h.Name, h.End, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("config: holiday %q: end %q before start %q", h.Name, h.End, h.Start)
		}
		out = append(out, model.HolidayRange{Name: h.Name, Start: start, End: end})
	}
	return out, nil
}

// SubjectDurations converts the per-subject minute overrides plus the
// default into time.Durations for the export engine.
func (c *Config) SubjectDurations() (def time.Duration, bySubject map[string]time.Duration) {
	def = time.Duration(c.DefaultDurationMinutes) * time.Minute
	bySubject = make(map[string]time.Duration, len(c.Durations))
	for subject, minutes := range c.Durations {
		if minutes > 0 {
			bySubject[subject] = time.Duration(minutes) * time.Minute
		}
	}
	return def, bySubject
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".colloscope-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

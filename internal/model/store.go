package model

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	appLog "colloscope/internal/log"
)

// Store holds the loaded Colloscope per class, keyed by lower-cased class
// identifier. Individual Colloscope instances are immutable; a refresh
// builds a complete new map and swaps it in wholesale, so readers never
// observe a half-loaded state.
type Store struct {
	mu       sync.RWMutex
	byClass  map[string]*Colloscope
	loadedAt time.Time
}

func NewStore() *Store {
	return &Store{byClass: map[string]*Colloscope{}}
}

// Get returns the colloscope for a class (case-insensitive).
func (s *Store) Get(class string) (*Colloscope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byClass[strings.ToLower(class)]
	return c, ok
}

// Classes returns the sorted class identifiers currently loaded.
func (s *Store) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byClass))
	for class := range s.byClass {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// LoadedAt returns the time of the last successful ReplaceAll.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// ReplaceAll swaps the whole class map.
func (s *Store) ReplaceAll(byClass map[string]*Colloscope) {
	s.mu.Lock()
	s.byClass = byClass
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// LoadDir reads every per-class canonical CSV under dir and replaces the
// store contents with the result. The file base name (case-insensitive)
// is the class identifier; a file named "example" is skipped.
//
// A file that fails to load is logged and skipped; the remaining classes
// still load. Only an unreadable directory is a hard error.
func (s *Store) LoadDir(dir string, holidays []HolidayRange, loc *time.Location) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return err
	}

	byClass := make(map[string]*Colloscope, len(paths))
	for _, path := range paths {
		class := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if class == "example" {
			continue
		}

		c, err := loadFile(path, class, holidays, loc)
		if err != nil {
			appLog.Error("colloscope load failed, skipping file", err, "class", class, "path", path)
			continue
		}

		byClass[class] = c
		appLog.Info("colloscope loaded", "class", class,
			"colles", len(c.Colles), "groups", len(c.Groups))
	}

	s.ReplaceAll(byClass)
	return nil
}

func loadFile(path, class string, holidays []HolidayRange, loc *time.Location) (*Colloscope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, class, holidays, loc)
}

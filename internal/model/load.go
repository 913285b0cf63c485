package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// canonicalPrefixLen is the number of fixed leading columns in a
// canonical table: Matiere, Prof, Jour, Heure, Salle.
const canonicalPrefixLen = 5

// LoadError reports the first canonical row that could not be resolved
// into valid sessions. Row is the 1-based line number in the canonical
// file (header included); Col is the 0-based column index, or -1 when the
// failure is not column-specific.
type LoadError struct {
	Class string
	Row   int
	Col   int
	Msg   string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Col >= 0 {
		return fmt.Sprintf("load %s: row %d col %d: %s", e.Class, e.Row, e.Col, e.Msg)
	}
	return fmt.Sprintf("load %s: row %d: %s", e.Class, e.Row, e.Msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load builds a Colloscope from a canonical table. The date lookup table
// (column index -> concrete calendar date) is resolved once from the
// header, then each non-empty group cell produces one Colle.
//
// Failure modes, each aborting the whole file:
//   - a data row with fewer than 5 leading fields
//   - an unparseable hour field
//   - a non-empty group cell under a date label that does not resolve to
//     a concrete calendar date
//   - two sessions sharing (group, date, time)
//
// A file with a header but no data rows (or no rows at all) is a valid,
// empty Colloscope.
func Load(r io.Reader, class string, holidays []HolidayRange, loc *time.Location) (*Colloscope, error) {
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Class: class, Row: 0, Col: -1, Msg: "malformed csv", Err: err}
	}

	out := &Colloscope{
		Class:    strings.ToLower(class),
		Holidays: holidays,
	}

	if len(rows) == 0 {
		return out, nil
	}

	header := rows[0]
	if len(header) < canonicalPrefixLen {
		return nil, &LoadError{Class: class, Row: 1, Col: -1,
			Msg: fmt.Sprintf("header has %d columns, want at least %d", len(header), canonicalPrefixLen)}
	}

	// Resolve each date column label once. Labels that do not parse stay
	// zero; they only become an error if a session actually lands there.
	labels := header[canonicalPrefixLen:]
	dates := make([]time.Time, len(labels))
	for i, label := range labels {
		if d, err := parseDateLabel(label, loc); err == nil {
			dates[i] = d
		}
	}

	seen := make(map[string]int) // occupancy key -> 1-based row
	groups := make(map[string]struct{})

	for rowIdx, row := range rows[1:] {
		line := rowIdx + 2 // 1-based, header included

		if len(row) < canonicalPrefixLen {
			return nil, &LoadError{Class: class, Row: line, Col: -1,
				Msg: fmt.Sprintf("row has %d columns, want at least %d", len(row), canonicalPrefixLen)}
		}

		subject, professor, room := row[0], row[1], row[4]
		hour, minute, err := parseHour(row[3])
		if err != nil {
			return nil, &LoadError{Class: class, Row: line, Col: 3,
				Msg: fmt.Sprintf("bad hour %q", row[3]), Err: err}
		}

		for i := range labels {
			col := canonicalPrefixLen + i
			if col >= len(row) {
				break
			}
			group := strings.TrimSpace(row[col])
			if group == "" {
				continue
			}
			if dates[i].IsZero() {
				return nil, &LoadError{Class: class, Row: line, Col: col,
					Msg: fmt.Sprintf("date label %q does not resolve to a calendar date", labels[i])}
			}

			c := Colle{
				Subject:   subject,
				Professor: professor,
				Classroom: room,
				Group:     group,
				Start: time.Date(dates[i].Year(), dates[i].Month(), dates[i].Day(),
					hour, minute, 0, 0, loc),
			}

			if prev, dup := seen[c.Key()]; dup {
				return nil, &LoadError{Class: class, Row: line, Col: col,
					Msg: fmt.Sprintf("group %s already has a session at %s (row %d)",
						group, c.Start.Format("02/01/2006 15:04"), prev)}
			}
			seen[c.Key()] = line
			groups[group] = struct{}{}
			out.Colles = append(out.Colles, c)
		}
	}

	out.Groups = make([]string, 0, len(groups))
	for g := range groups {
		out.Groups = append(out.Groups, g)
	}
	sort.Strings(out.Groups)

	return out, nil
}

// parseDateLabel parses a canonical header date label in D/M/YY form
// (two-digit years read as 2000+YY; four-digit years accepted as-is).
func parseDateLabel(label string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(label), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date label %q: want D/M/YY", label)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("date label %q: bad day: %w", label, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("date label %q: bad month: %w", label, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("date label %q: bad year: %w", label, err)
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date label %q: out of range", label)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// parseHour parses a canonical start time. The normalizer emits French
// clock forms like "8h" or "18h30"; plain "8:00" / "08:00" are accepted
// too.
func parseHour(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, 0, fmt.Errorf("empty hour")
	}

	sep := strings.IndexAny(s, "h:")
	if sep == -1 {
		return 0, 0, fmt.Errorf("hour %q: no h/: separator", s)
	}

	hour, err = strconv.Atoi(s[:sep])
	if err != nil {
		return 0, 0, fmt.Errorf("hour %q: %w", s, err)
	}

	if rest := s[sep+1:]; rest != "" {
		minute, err = strconv.Atoi(rest)
		if err != nil {
			return 0, 0, fmt.Errorf("hour %q: %w", s, err)
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("hour %q: out of range", s)
	}
	return hour, minute, nil
}

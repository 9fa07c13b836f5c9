// Package semester resolves observing semester identifiers such as "2024A"
// into the calendar dates they span.
package semester

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrInvalidSemester is returned for identifiers not matching YYYYA or YYYYB.
var ErrInvalidSemester = errors.New("invalid semester identifier")

var pattern = regexp.MustCompile(`^[12][0-9]{3}[AB]$`)

// Half is the A or B half of an observing year.
type Half byte

const (
	HalfA Half = 'A' // February 1 through July 31
	HalfB Half = 'B' // August 1 through January 31 of the next year
)

// ID identifies one semester.
type ID struct {
	Year int
	Half Half
}

// Parse validates s and returns its semester ID.
func Parse(s string) (ID, error) {
	if !pattern.MatchString(s) {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidSemester, s)
	}
	year, _ := strconv.Atoi(s[:4])
	return ID{Year: year, Half: Half(s[4])}, nil
}

// String returns the identifier, e.g. "2024B", or "" for the zero ID.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d%c", id.Year, id.Half)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// IsZero reports whether id is unset.
func (id ID) IsZero() bool {
	return id.Year == 0
}

// Start returns the first day of the semester at 00:00 UTC.
func (id ID) Start() time.Time {
	if id.Half == HalfA {
		return time.Date(id.Year, time.February, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(id.Year, time.August, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the semester at 00:00 UTC. B semesters end
// in the following calendar year.
func (id ID) End() time.Time {
	if id.Half == HalfA {
		return time.Date(id.Year, time.July, 31, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(id.Year+1, time.January, 31, 0, 0, 0, 0, time.UTC)
}

// Next returns the following semester.
func (id ID) Next() ID {
	if id.Half == HalfA {
		return ID{Year: id.Year, Half: HalfB}
	}
	return ID{Year: id.Year + 1, Half: HalfA}
}

// Prev returns the preceding semester.
func (id ID) Prev() ID {
	if id.Half == HalfB {
		return ID{Year: id.Year, Half: HalfA}
	}
	return ID{Year: id.Year - 1, Half: HalfB}
}

// Dates returns every calendar day of the semester in ascending order.
func (id ID) Dates() []time.Time {
	start, end := id.Start(), id.End()
	dates := make([]time.Time, 0, 184)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Dates parses s and returns the days of that semester. Invalid identifiers
// yield no dates and ErrInvalidSemester.
func Dates(s string) ([]time.Time, error) {
	id, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return id.Dates(), nil
}

// Of returns the semester containing the civil date of t. January belongs
// to the B semester of the previous year.
func Of(t time.Time) ID {
	y, m, _ := t.Date()
	switch {
	case m == time.January:
		return ID{Year: y - 1, Half: HalfB}
	case m <= time.July:
		return ID{Year: y, Half: HalfA}
	default:
		return ID{Year: y, Half: HalfB}
	}
}

// Current returns the semester containing the clock's current time.
func Current(clock clockwork.Clock) ID {
	return Of(clock.Now())
}

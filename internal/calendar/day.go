package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Layout is the ISO-8601 layout days are written in.
const Layout = "2006-01-02"

const readLayout = "2006-1-2" // lenient on read: 2025-7-1 is accepted

// ErrInvalidDay is returned when a string does not name a calendar day.
var ErrInvalidDay = errors.New("invalid calendar day")

// Day is a calendar day with no time component. The zero value is not a valid day.
type Day struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Day, so New(2020, 1, 32) is 2020-02-01.
func New(year int, month time.Month, day int) Day {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Day{y, m, d}
}

// FromTime returns the day t falls on in t's location.
func FromTime(t time.Time) Day { return New(t.Date()) }

// Today returns the current day in UTC.
func Today() Day { return FromTime(time.Now().UTC()) }

// SystemClock reports the current UTC day.
type SystemClock struct{}

func (SystemClock) Today() Day { return Today() }

// Parse parses a day in YYYY-MM-DD form. A full RFC3339 timestamp is accepted and truncated
// to its day, since clients often send one.
func Parse(s string) (Day, error) {
	if t, err := time.Parse(readLayout, s); err == nil {
		return New(t.Date()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t.UTC()), nil
	}
	return Day{}, fmt.Errorf("%w: %q want format %q", ErrInvalidDay, s, Layout)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Day) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time { return d.time() }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

func (d Day) Year() int { return d.y }
func (d Day) Month() time.Month { return d.m }
func (d Day) Day() int { return d.d }
func (d Day) Before(x Day) bool { return d.time().Before(x.time()) }
func (d Day) After(x Day) bool { return d.time().After(x.time()) }
func (d Day) AddDays(n int) Day { return New(d.y, d.m, d.d+n) }
func (d Day) String() string { return d.time().Format(Layout) }
func (d Day) Format(layout string) string { return d.time().Format(layout) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Day) Compare(x Day) int { return d.time().Compare(x.time()) }

// DaysUntil returns the number of days from d to x; negative when x is before d.
func (d Day) DaysUntil(x Day) int {
	return int(x.time().Sub(d.time()).Hours() / 24)
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

var (
	_ json.Marshaler   = Day{}
	_ json.Unmarshaler = (*Day)(nil)
)

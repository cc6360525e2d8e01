package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the width of a calendar-aligned reporting bucket.
type Granularity int

const (
	Daily Granularity = iota
	Monthly
	Quarterly
)

func (g Granularity) String() string {
	switch g {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity accepts "daily", "monthly", "quarterly" and their singular nouns.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	default:
		return Daily, fmt.Errorf("unknown granularity %q", s)
	}
}

func (g Granularity) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Granularity) UnmarshalText(b []byte) error {
	parsed, err := ParseGranularity(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// StartOf returns the first day of the bucket containing d.
func (d Day) StartOf(g Granularity) Day {
	switch g {
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		quarter := (d.m - 1) / 3
		return New(d.y, quarter*3+1, 1)
	default:
		return d
	}
}

// EndOf returns the last day of the bucket containing d.
func (d Day) EndOf(g Granularity) Day {
	switch g {
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		quarter := (d.m - 1) / 3
		return New(d.y, quarter*3+4, 0) // day 0 of the following month
	default:
		return d
	}
}

// Next returns the first day of the bucket following the one containing d.
func (d Day) Next(g Granularity) Day { return d.EndOf(g).AddDays(1) }

// Label names the bucket containing d: 2020-01-02, 2020-01 or 2020-Q1.
func (d Day) Label(g Granularity) string {
	switch g {
	case Monthly:
		return d.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", d.y, int(d.m-time.January)/3+1)
	default:
		return d.String()
	}
}

// Package aggregate buckets a dated ledger into calendar-aligned reporting periods.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
)

// Period is one reporting bucket.
type Period struct {
	Label           string          `json:"period"`
	Start           calendar.Day    `json:"start"`
	End             calendar.Day    `json:"end"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
}

// Totals sums the flow columns; ClosingBalance is the final period's, not a sum.
type Totals struct {
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
}

// Report is the aggregator output.
type Report struct {
	Rows        []Period             `json:"rows"`
	Totals      Totals               `json:"totals"`
	Granularity calendar.Granularity `json:"granularity"`
	// Skipped counts legacy entries left out because their date did not parse.
	Skipped int `json:"skipped,omitempty"`
}

// Aggregate buckets lines by g. Periods run contiguously from the one holding the first line
// through the one holding the later of the last line and until; until may be zero.
// A period without lines carries the previous closing balance and has zero flows.
func Aggregate(lines []Line, g calendar.Granularity, until calendar.Day) Report {
	report := Report{Rows: []Period{}, Totals: zeroTotals(), Granularity: g}
	if len(lines) == 0 {
		return report
	}

	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	last := sorted[len(sorted)-1].Date
	if !until.IsZero() && until.After(last) {
		last = until
	}
	end := last.EndOf(g)

	balance := decimal.Zero
	next := 0
	for start := sorted[0].Date.StartOf(g); !start.After(end); start = start.Next(g) {
		p := Period{
			Label:           start.Label(g),
			Start:           start,
			End:             start.EndOf(g),
			TotalPaid:       decimal.Zero,
			TotalReceived:   decimal.Zero,
			InterestAccrued: decimal.Zero,
		}
		for next < len(sorted) && !sorted[next].Date.After(p.End) {
			l := sorted[next]
			p.TotalPaid = p.TotalPaid.Add(l.Paid)
			p.TotalReceived = p.TotalReceived.Add(l.Received)
			p.InterestAccrued = p.InterestAccrued.Add(l.Interest)
			balance = l.Balance
			next++
		}
		p.ClosingBalance = balance

		report.Totals.TotalPaid = report.Totals.TotalPaid.Add(p.TotalPaid)
		report.Totals.TotalReceived = report.Totals.TotalReceived.Add(p.TotalReceived)
		report.Totals.InterestAccrued = report.Totals.InterestAccrued.Add(p.InterestAccrued)
		report.Rows = append(report.Rows, p)
	}
	report.Totals.ClosingBalance = balance
	return report
}

func zeroTotals() Totals {
	return Totals{
		TotalPaid:       decimal.Zero,
		TotalReceived:   decimal.Zero,
		InterestAccrued: decimal.Zero,
		ClosingBalance:  decimal.Zero,
	}
}

// Package report renders engine, ledger and aggregator output for export.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
)

// View selects which columns of the detailed ledger a reader sees.
type View string

const (
	ViewAdmin    View = "admin"
	ViewCustomer View = "customer"
)

// ParseView accepts "admin" and "customer"; the empty string is admin.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewAdmin:
		return ViewAdmin, nil
	case ViewCustomer:
		return ViewCustomer, nil
	default:
		return "", fmt.Errorf("unknown ledger view %q", s)
	}
}

// LedgerLine is a stored entry with the running balance after it.
type LedgerLine struct {
	EventID   string           `json:"id"`
	Date      calendar.Day     `json:"date"`
	Narration string           `json:"narration"`
	Kind      domain.EntryKind `json:"kind"`
	Paid      decimal.Decimal  `json:"amount_paid"`
	Received  decimal.Decimal  `json:"amount_received"`
	Balance   decimal.Decimal  `json:"running_balance"`
}

// LedgerTotals closes the detailed ledger. Outstanding and InterestAccrued come from the engine.
type LedgerTotals struct {
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
}

// Ledger is the detailed view of a loan.
type Ledger struct {
	Lines  []LedgerLine `json:"entries"`
	Totals LedgerTotals `json:"totals"`
}

// RunningLedger lists events in order with runningBalance = previous + paid - received.
// Events must already be sorted. Totals carry only the flow sums.
func RunningLedger(events []domain.Event) Ledger {
	l := Ledger{
		Lines: make([]LedgerLine, 0, len(events)),
		Totals: LedgerTotals{
			TotalPaid:       decimal.Zero,
			TotalReceived:   decimal.Zero,
			Outstanding:     decimal.Zero,
			InterestAccrued: decimal.Zero,
		},
	}
	balance := decimal.Zero
	for i := range events {
		e := &events[i]
		paid, received := e.AmountPaid(), e.AmountReceived()
		balance = balance.Add(paid).Sub(received)
		l.Totals.TotalPaid = l.Totals.TotalPaid.Add(paid)
		l.Totals.TotalReceived = l.Totals.TotalReceived.Add(received)
		l.Lines = append(l.Lines, LedgerLine{
			EventID:   e.ID,
			Date:      e.Date,
			Narration: e.Narration,
			Kind:      e.Kind,
			Paid:      paid,
			Received:  received,
			Balance:   balance,
		})
	}
	return l
}

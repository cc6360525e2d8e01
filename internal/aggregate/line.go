package aggregate

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/calendar"
)

// Line is one dated ledger position fed to the aggregator: the flows on that line and the
// outstanding balance after it.
type Line struct {
	Date     calendar.Day
	Paid     decimal.Decimal
	Received decimal.Decimal
	Interest decimal.Decimal
	Balance  decimal.Decimal
}

// FromRows converts engine rows. Disbursals count as paid, payments as received, and the
// balance is principal plus interest after the row.
func FromRows(rows []accrual.Row) []Line {
	lines := make([]Line, 0, len(rows))
	for _, r := range rows {
		l := Line{
			Date:     r.Date,
			Paid:     decimal.Zero,
			Received: decimal.Zero,
			Interest: decimal.Zero,
			Balance:  r.PrincipalAfter.Add(r.InterestAfter),
		}
		switch r.Kind {
		case accrual.KindDisbursal:
			l.Paid = r.Change
		case accrual.KindPayment:
			l.Received = r.Change.Neg()
		case accrual.KindInterest:
			l.Interest = r.Change
		}
		lines = append(lines, l)
	}
	return lines
}

// LedgerEntry is a stored ledger line as it comes out of persistence or a legacy import.
// Date is kept raw because legacy rows may not parse.
type LedgerEntry struct {
	Date     string
	Paid     decimal.Decimal
	Received decimal.Decimal
	// Balance is the stored running balance, if the source carried one.
	Balance *decimal.Decimal
}

// FromLedger replays stored entries with runningBalance = previous + paid - received.
// A stored balance, when present, replaces the replayed one.
//
// An entry whose date does not parse is left out of the result and the last known balance
// is carried forward; skipped reports how many entries were dropped this way.
func FromLedger(entries []LedgerEntry, log zerolog.Logger) (lines []Line, skipped int) {
	lines = make([]Line, 0, len(entries))
	balance := decimal.Zero
	for i, e := range entries {
		d, err := calendar.Parse(e.Date)
		if err != nil {
			skipped++
			log.Warn().
				Int("line", i+1).
				Str("date", e.Date).
				Str("carried_balance", balance.String()).
				Msg("skipping ledger entry with unparseable date")
			continue
		}

		balance = balance.Add(e.Paid).Sub(e.Received)
		if e.Balance != nil {
			balance = *e.Balance
		}
		lines = append(lines, Line{
			Date:     d,
			Paid:     e.Paid,
			Received: e.Received,
			Interest: decimal.Zero,
			Balance:  balance,
		})
	}
	return lines, skipped
}

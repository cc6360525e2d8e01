package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/aggregate"
)

// TotalsLabel opens the closing row of every export.
const TotalsLabel = "Totals"

var (
	adminHeader      = []string{"Date", "Narration", "Type", "Amount Paid", "Amount Received", "Balance"}
	customerHeader   = []string{"Date", "Description", "Your Payment", "Balance"}
	periodHeader     = []string{"Period", "Total Paid", "Total Received", "Interest Accrued", "Closing Balance"}
	simulationHeader = []string{"Date", "Type", "Change", "Principal After", "Interest After", "Note"}
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// WriteLedgerCSV writes the detailed ledger in the columns of view.
func WriteLedgerCSV(w io.Writer, view View, l Ledger) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(l.Lines)+2)

	if view == ViewCustomer {
		records = append(records, customerHeader)
		for _, line := range l.Lines {
			records = append(records, []string{line.Date.String(), line.Narration, money(line.Received), money(line.Balance)})
		}
		records = append(records, []string{TotalsLabel, "", money(l.Totals.TotalReceived), money(l.Totals.Outstanding)})
	} else {
		records = append(records, adminHeader)
		for _, line := range l.Lines {
			records = append(records, []string{
				line.Date.String(),
				line.Narration,
				string(line.Kind),
				money(line.Paid),
				money(line.Received),
				money(line.Balance),
			})
		}
		records = append(records, []string{TotalsLabel, "", "", money(l.Totals.TotalPaid), money(l.Totals.TotalReceived), money(l.Totals.Outstanding)})
	}

	return flush(cw, records)
}

// WritePeriodsCSV writes an aggregated report.
func WritePeriodsCSV(w io.Writer, r aggregate.Report) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(r.Rows)+2)
	records = append(records, periodHeader)
	for _, p := range r.Rows {
		records = append(records, []string{
			p.Label,
			money(p.TotalPaid),
			money(p.TotalReceived),
			money(p.InterestAccrued),
			money(p.ClosingBalance),
		})
	}
	records = append(records, []string{
		TotalsLabel,
		money(r.Totals.TotalPaid),
		money(r.Totals.TotalReceived),
		money(r.Totals.InterestAccrued),
		money(r.Totals.ClosingBalance),
	})
	return flush(cw, records)
}

// WriteSimulationCSV writes engine rows. The totals row carries the closing principal and interest.
func WriteSimulationCSV(w io.Writer, res accrual.Result) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(res.Rows)+2)
	records = append(records, simulationHeader)
	for _, row := range res.Rows {
		records = append(records, []string{
			row.Date.String(),
			string(row.Kind),
			money(row.Change),
			money(row.PrincipalAfter),
			money(row.InterestAfter),
			row.Note,
		})
	}
	records = append(records, []string{
		TotalsLabel,
		"",
		"",
		money(res.Summary.Principal),
		money(res.Summary.Interest),
		"Outstanding " + money(res.Summary.Outstanding()),
	})
	return flush(cw, records)
}

func flush(cw *csv.Writer, records [][]string) error {
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ReadLedgerCSV reads a ledger exported in the admin layout, or any file with at least Date,
// Amount Paid and Amount Received columns. Column order is free and a Balance column is
// optional. The Totals row is dropped. Dates are returned raw so that the aggregator can
// decide what to do with lines that do not parse.
func ReadLedgerCSV(r io.Reader) ([]aggregate.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, okDate := cols["date"]
	paidCol, okPaid := cols["amount paid"]
	receivedCol, okReceived := cols["amount received"]
	balanceCol, hasBalance := cols["balance"]
	if !okDate || !okPaid || !okReceived {
		return nil, fmt.Errorf("csv header %v lacks Date, Amount Paid or Amount Received", header)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	entries := make([]aggregate.LedgerEntry, 0, len(records))
	for n, rec := range records {
		date := field(rec, dateCol)
		if strings.EqualFold(date, TotalsLabel) {
			continue
		}
		paid, err := amountField(rec, paidCol)
		if err != nil {
			return nil, fmt.Errorf("line %d: amount paid: %w", n+2, err)
		}
		received, err := amountField(rec, receivedCol)
		if err != nil {
			return nil, fmt.Errorf("line %d: amount received: %w", n+2, err)
		}
		e := aggregate.LedgerEntry{Date: date, Paid: paid, Received: received}
		if hasBalance && field(rec, balanceCol) != "" {
			b, err := amountField(rec, balanceCol)
			if err != nil {
				return nil, fmt.Errorf("line %d: balance: %w", n+2, err)
			}
			e.Balance = &b
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func amountField(rec []string, i int) (decimal.Decimal, error) {
	s := strings.ReplaceAll(field(rec, i), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Package accrual reconstructs the day-by-day principal and interest of a loan from its
// cash-flow events.
//
// Interest is simple and daily: on every day after the first disbursal, up to and including
// the as-of day, the principal outstanding at the start of that day earns
// principal * rate/100 / 365. Interest for a day is charged before that day's events apply.
//
// The default DayStepped strategy costs O(days + events) and emits one INTEREST row per day.
// ClosedForm costs O(events) and charges each event-free span in one step using the same
// rounded daily amount, so both strategies end on identical balances.
package accrual

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
)

// Simulate runs the engine. It is pure: identical params give identical results.
// An as-of day before the first disbursal yields an empty result, not an error.
func Simulate(p Params) (Result, error) {
	events, err := prepare(p)
	if err != nil {
		return Result{}, err
	}
	if len(events) == 0 {
		return emptyResult(), nil
	}

	first, ok := domain.FirstDisbursalDate(events)
	if !ok {
		return Result{}, fmt.Errorf("%w: no disbursal among %d events", domain.ErrInvalidEventOrder, len(events))
	}
	for i := range events {
		if events[i].Type == domain.EventPayment && events[i].Date.Before(first) {
			return Result{}, fmt.Errorf("%w: payment %s on %s, first disbursal on %s",
				domain.ErrInvalidEventOrder, events[i].ID, events[i].Date, first)
		}
	}

	if p.AsOf.Before(first) {
		return emptyResult(), nil
	}

	days := first.DaysUntil(p.AsOf)
	if p.MaxDays > 0 && days > p.MaxDays {
		return Result{}, fmt.Errorf("%w: %d days requested, limit %d", domain.ErrSpanTooLarge, days, p.MaxDays)
	}

	s := &simulation{
		events: events,
		rate:   p.AnnualRate,
		mode:   p.Mode,
		rows:   make([]Row, 0, estimateRows(p.Strategy, days, len(events))),
	}

	s.applyEventsOn(first)
	switch p.Strategy {
	case ClosedForm:
		s.runClosedForm(first, p.AsOf)
	default:
		s.runDayStepped(first, p.AsOf)
	}

	return Result{Rows: s.rows, Summary: s.summary(), Days: days}, nil
}

// prepare validates params and returns a sorted copy of the events.
func prepare(p Params) ([]domain.Event, error) {
	if p.AsOf.IsZero() {
		return nil, fmt.Errorf("%w: as-of date is required", domain.ErrInvalidDate)
	}
	if err := domain.ValidateRate(p.AnnualRate); err != nil {
		return nil, err
	}
	if !p.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAllocationMode, p.Mode)
	}

	events := make([]domain.Event, len(p.Events))
	copy(events, p.Events)
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return nil, err
		}
	}
	SortEvents(events)
	return events, nil
}

// SortEvents orders events by date, then by store sequence, then by id.
func SortEvents(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := &events[i], &events[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.ID < b.ID
	})
}

func emptyResult() Result {
	return Result{Rows: []Row{}, Summary: zeroSummary()}
}

func zeroSummary() Summary {
	return Summary{
		Principal:       decimal.Zero,
		Interest:        decimal.Zero,
		TotalLoaned:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		InterestAccrued: decimal.Zero,
	}
}

func estimateRows(strategy Strategy, days, events int) int {
	if strategy == ClosedForm {
		return 2*events + 1
	}
	return days + events
}

type simulation struct {
	events  []domain.Event
	next    int // index of the first event not yet applied
	rate    decimal.Decimal
	mode    domain.AllocationMode
	balance Balance
	loaned  decimal.Decimal
	paid    decimal.Decimal
	accrued decimal.Decimal
	rows    []Row
}

func (s *simulation) runDayStepped(first, asOf calendar.Day) {
	for day := first.AddDays(1); !day.After(asOf); day = day.AddDays(1) {
		if s.accrues() {
			daily := DailyInterest(s.balance.Principal, s.rate)
			s.charge(day, daily, noteInterest)
		}
		s.applyEventsOn(day)
	}
}

func (s *simulation) runClosedForm(first, asOf calendar.Day) {
	cursor := first
	for {
		target := asOf
		more := s.next < len(s.events) && !s.events[s.next].Date.After(asOf)
		if more {
			target = s.events[s.next].Date
		}

		if span := cursor.DaysUntil(target); span > 0 && s.accrues() {
			daily := DailyInterest(s.balance.Principal, s.rate)
			s.charge(target, daily.Mul(decimal.NewFromInt(int64(span))), fmt.Sprintf("Interest for %d days", span))
		}

		s.applyEventsOn(target)
		cursor = target
		if !more {
			return
		}
	}
}

func (s *simulation) accrues() bool {
	return !s.balance.Principal.IsZero() && !s.rate.IsZero()
}

func (s *simulation) charge(day calendar.Day, amount decimal.Decimal, note string) {
	s.balance.Interest = s.balance.Interest.Add(amount)
	s.accrued = s.accrued.Add(amount)
	s.rows = append(s.rows, Row{
		Date:           day,
		Kind:           KindInterest,
		Change:         amount,
		PrincipalAfter: s.balance.Principal,
		InterestAfter:  s.balance.Interest,
		Note:           note,
	})
}

// applyEventsOn applies, in order, every pending event dated day.
func (s *simulation) applyEventsOn(day calendar.Day) {
	for s.next < len(s.events) && s.events[s.next].Date == day {
		e := &s.events[s.next]
		s.next++

		row := Row{Date: day, EventID: e.ID}
		switch e.Type {
		case domain.EventDisbursal:
			s.balance = Disburse(s.balance, e.Amount)
			s.loaned = s.loaned.Add(e.Amount)
			row.Kind, row.Change, row.Note = KindDisbursal, e.Amount, noteDisbursal
		case domain.EventPayment:
			s.balance = Pay(s.balance, e.Amount, s.mode)
			s.paid = s.paid.Add(e.Amount)
			row.Kind, row.Change, row.Note = KindPayment, e.Amount.Neg(), notePayment
		}
		if e.Narration != "" {
			row.Note = e.Narration
		}
		row.PrincipalAfter = s.balance.Principal
		row.InterestAfter = s.balance.Interest
		s.rows = append(s.rows, row)
	}
}

func (s *simulation) summary() Summary {
	return Summary{
		Principal:       s.balance.Principal,
		Interest:        s.balance.Interest,
		TotalLoaned:     s.loaned,
		TotalPaid:       s.paid,
		InterestAccrued: s.accrued,
	}
}

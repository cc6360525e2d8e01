package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
)

// EventType is the direction of a cash flow.
type EventType string

const (
	// EventDisbursal is money given by the lender to the borrower.
	EventDisbursal EventType = "disbursal"
	// EventPayment is money received from the borrower.
	EventPayment EventType = "payment"
)

func (t EventType) IsValid() bool {
	return t == EventDisbursal || t == EventPayment
}

// EntryKind is how the lender labelled an entry in the ledger.
type EntryKind string

const (
	EntryKindDisbursal  EntryKind = "disbursal"
	EntryKindEMI        EntryKind = "emi"
	EntryKindAdjustment EntryKind = "adjustment"
)

// EventType returns the cash-flow direction implied by the entry kind.
func (k EntryKind) EventType() (EventType, error) {
	switch k {
	case EntryKindDisbursal:
		return EventDisbursal, nil
	case EntryKindEMI, EntryKindAdjustment:
		return EventPayment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryKind, k)
	}
}

// Event is one immutable cash-flow instruction on a loan. Corrections are recorded as new
// events (for example an adjustment), never as edits.
type Event struct {
	CreatedAt time.Time
	ID        string
	LoanID    string
	Narration string
	Type      EventType
	Kind      EntryKind
	Date      calendar.Day
	Amount    decimal.Decimal
	// Seq orders same-day events; the store assigns it per loan at insertion.
	Seq int64
}

// AmountPaid is the amount that left the lender (disbursals).
func (e *Event) AmountPaid() decimal.Decimal {
	if e.Type == EventDisbursal {
		return e.Amount
	}
	return decimal.Zero
}

// AmountReceived is the amount the lender got back (payments).
func (e *Event) AmountReceived() decimal.Decimal {
	if e.Type == EventPayment {
		return e.Amount
	}
	return decimal.Zero
}

// Validate checks the event in isolation.
func (e *Event) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, e.Type)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: event %s has no date", ErrInvalidDate, e.ID)
	}
	return ValidateAmount(e.Amount)
}

// FirstDisbursalDate returns the earliest disbursal date among events.
func FirstDisbursalDate(events []Event) (calendar.Day, bool) {
	var first calendar.Day
	found := false
	for i := range events {
		if events[i].Type != EventDisbursal {
			continue
		}
		if !found || events[i].Date.Before(first) {
			first = events[i].Date
			found = true
		}
	}
	return first, found
}

// ValidateOrder checks that candidate may be appended to existing without a payment landing
// before the first disbursal.
func ValidateOrder(existing []Event, candidate Event) error {
	if candidate.Type != EventPayment {
		return nil
	}
	first, ok := FirstDisbursalDate(existing)
	if !ok {
		return fmt.Errorf("%w: no disbursal recorded yet", ErrInvalidEventOrder)
	}
	if candidate.Date.Before(first) {
		return fmt.Errorf("%w: payment on %s, first disbursal on %s", ErrInvalidEventOrder, candidate.Date, first)
	}
	return nil
}

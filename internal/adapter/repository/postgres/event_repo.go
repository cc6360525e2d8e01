package postgres

import (
	"context"
	"fmt"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/postgres/generated"
	"github.com/iho/loanledger/internal/usecase"
)

// EventRepository implements usecase.EventRepository. Rows are never updated or deleted.
type EventRepository struct {
	queries *generated.Queries
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db generated.DBTX) *EventRepository {
	return &EventRepository{
		queries: generated.New(db),
	}
}

// Create assigns the next per-loan sequence number to event and inserts it.
// The caller must hold the loan row lock so concurrent inserts cannot share a number.
func (r *EventRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.Event) error {
	q := queriesFor(tx)

	seq, err := q.NextLoanEventSeq(ctx, event.LoanID)
	if err != nil {
		return fmt.Errorf("next event seq: %w", err)
	}

	err = q.CreateLoanEvent(ctx, generated.CreateLoanEventParams{
		ID:        event.ID,
		LoanID:    event.LoanID,
		Seq:       seq,
		Type:      string(event.Type),
		Kind:      string(event.Kind),
		Amount:    decimalToNumeric(event.Amount),
		EventDate: dayToPgDate(event.Date),
		Narration: event.Narration,
		CreatedAt: timeToPgTimestamptz(event.CreatedAt),
	})
	if err != nil {
		return err
	}

	event.Seq = seq
	return nil
}

// ListByLoan returns the events of a loan ordered by date, then sequence.
func (r *EventRepository) ListByLoan(ctx context.Context, loanID string) ([]domain.Event, error) {
	return listEvents(ctx, r.queries, loanID)
}

// ListByLoanTx is ListByLoan inside tx, so it sees rows the transaction has written.
func (r *EventRepository) ListByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) ([]domain.Event, error) {
	return listEvents(ctx, queriesFor(tx), loanID)
}

func listEvents(ctx context.Context, q *generated.Queries, loanID string) ([]domain.Event, error) {
	rows, err := q.ListLoanEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, len(rows))
	for i, row := range rows {
		events[i] = rowToEvent(row)
	}

	return events, nil
}

func rowToEvent(row generated.LoanEvent) domain.Event {
	return domain.Event{
		ID:        row.ID,
		LoanID:    row.LoanID,
		Seq:       row.Seq,
		Type:      domain.EventType(row.Type),
		Kind:      domain.EntryKind(row.Kind),
		Amount:    numericToDecimal(row.Amount),
		Date:      pgDateToDay(row.EventDate),
		Narration: row.Narration,
		CreatedAt: row.CreatedAt.Time,
	}
}

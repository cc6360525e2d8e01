package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/report"
)

// LedgerUseCase records and lists ledger entries of a loan.
type LedgerUseCase struct {
	txManager TransactionManager
	loanRepo  LoanRepository
	eventRepo EventRepository
	idGen     IDGenerator
	retrier   Retrier
	clock     Clock
	engine    EngineConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	eventRepo EventRepository,
	idGen IDGenerator,
	retrier Retrier,
	clock Clock,
	engine EngineConfig,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager: txManager,
		loanRepo:  loanRepo,
		eventRepo: eventRepo,
		idGen:     idGen,
		retrier:   retrier,
		clock:     clock,
		engine:    engine,
		metrics:   metrics,
		logger:    logger,
	}
}

// RecordEntryInput represents input for recording a ledger entry.
type RecordEntryInput struct {
	LoanID    string
	Narration string
	Kind      domain.EntryKind
	Date      calendar.Day
	Amount    decimal.Decimal
}

// RecordEntry validates and appends one entry. A payment dated before the first disbursal is
// rejected with ErrInvalidEventOrder.
func (uc *LedgerUseCase) RecordEntry(ctx context.Context, input RecordEntryInput) (*domain.Event, error) {
	eventType, err := input.Kind.EventType()
	if err != nil {
		return nil, err
	}
	if len(input.Narration) > domain.MaxNarrationLength {
		return nil, fmt.Errorf("%w: maximum is %d characters", domain.ErrNarrationTooLong, domain.MaxNarrationLength)
	}

	event := &domain.Event{
		ID:        uc.idGen.Generate(),
		LoanID:    input.LoanID,
		Narration: input.Narration,
		Type:      eventType,
		Kind:      input.Kind,
		Date:      input.Date,
		Amount:    input.Amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.recordEntry(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.WithLabelValues(string(event.Kind)).Inc()
	}
	uc.logger.Info().
		Str("loan_id", event.LoanID).
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("amount", event.Amount.String()).
		Str("date", event.Date.String()).
		Int64("seq", event.Seq).
		Msg("ledger entry recorded")

	return event, nil
}

func (uc *LedgerUseCase) recordEntry(ctx context.Context, event *domain.Event) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, event.LoanID)
	if err != nil {
		return err
	}
	if loan.IsClosed() {
		return domain.ErrLoanClosed
	}

	existing, err := uc.eventRepo.ListByLoanTx(txCtx, tx, event.LoanID)
	if err != nil {
		return err
	}
	if err := domain.ValidateOrder(existing, *event); err != nil {
		return err
	}

	if err := uc.eventRepo.Create(txCtx, tx, event); err != nil {
		return err
	}
	return tx.Commit(txCtx)
}

// ListLedgerInput represents input for listing a loan ledger.
type ListLedgerInput struct {
	LoanID string
	// AsOf is the day outstanding and interest are computed for; zero means today.
	AsOf calendar.Day
}

// ListLedger returns every entry with its running balance. Outstanding and accrued interest
// in the totals come from the engine.
func (uc *LedgerUseCase) ListLedger(ctx context.Context, input ListLedgerInput) (*report.Ledger, error) {
	loan, err := uc.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListByLoan(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	accrual.SortEvents(events)

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = uc.clock.Today()
	}
	res, err := runEngine(loan, events, asOf, uc.engine.Strategy, uc.engine.MaxDays, uc.metrics)
	if err != nil {
		return nil, err
	}

	ledger := report.RunningLedger(events)
	ledger.Totals.Outstanding = res.Summary.Outstanding()
	ledger.Totals.InterestAccrued = res.Summary.InterestAccrued
	return &ledger, nil
}

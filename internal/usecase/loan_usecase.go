package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
)

// LoanUseCase handles loan lifecycle.
type LoanUseCase struct {
	txManager TransactionManager
	loanRepo  LoanRepository
	eventRepo EventRepository
	idGen     IDGenerator
	clock     Clock
	engine    EngineConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	eventRepo EventRepository,
	idGen IDGenerator,
	clock Clock,
	engine EngineConfig,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LoanUseCase {
	return &LoanUseCase{
		txManager: txManager,
		loanRepo:  loanRepo,
		eventRepo: eventRepo,
		idGen:     idGen,
		clock:     clock,
		engine:    engine,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateLoanInput represents input for creating a loan.
type CreateLoanInput struct {
	TenureMonths *int
	BorrowerName string
	BorrowerRef  string
	Note         string
	Allocation   domain.AllocationMode
	Repayment    domain.RepaymentMode
	StartDate    calendar.Day
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
}

// CreateLoan stores the loan and records its principal as the first disbursal.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	now := time.Now().UTC()

	loan := &domain.Loan{
		ID:           uc.idGen.Generate(),
		BorrowerName: input.BorrowerName,
		BorrowerRef:  input.BorrowerRef,
		Note:         input.Note,
		Allocation:   input.Allocation,
		Repayment:    input.Repayment,
		TenureMonths: input.TenureMonths,
		Status:       domain.LoanStatusActive,
		StartDate:    input.StartDate,
		Principal:    input.Principal,
		AnnualRate:   input.AnnualRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if loan.Allocation == "" {
		loan.Allocation = domain.InterestFirst
	}
	if loan.Repayment == "" {
		loan.Repayment = domain.RepaymentNormal
	}
	if loan.StartDate.IsZero() {
		loan.StartDate = uc.clock.Today()
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	disbursal := &domain.Event{
		ID:        uc.idGen.Generate(),
		LoanID:    loan.ID,
		Type:      domain.EventDisbursal,
		Kind:      domain.EntryKindDisbursal,
		Date:      loan.StartDate,
		Amount:    loan.Principal,
		Narration: "Loan given",
		CreatedAt: now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.eventRepo.Create(txCtx, tx, disbursal); err != nil {
		return nil, err
	}
	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansCreated.Inc()
		uc.metrics.EntriesCreated.WithLabelValues(string(disbursal.Kind)).Inc()
	}
	uc.logger.Info().
		Str("loan_id", loan.ID).
		Str("principal", loan.Principal.String()).
		Str("start_date", loan.StartDate.String()).
		Msg("loan created")

	return loan, nil
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// ListLoansInput represents input for listing loans.
type ListLoansInput struct {
	Limit  int
	Offset int
}

// ListLoans lists loans with pagination.
func (uc *LoanUseCase) ListLoans(ctx context.Context, input ListLoansInput) ([]*domain.Loan, error) {
	if input.Offset < 0 {
		input.Offset = 0
	}
	return uc.loanRepo.List(ctx, clampLimit(input.Limit), input.Offset)
}

// CloseLoan marks a loan closed. Only loans whose outstanding balance as of today is zero or
// less can be closed.
func (uc *LoanUseCase) CloseLoan(ctx context.Context, id string) (*domain.Loan, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if loan.IsClosed() {
		return nil, domain.ErrLoanClosed
	}

	events, err := uc.eventRepo.ListByLoanTx(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	res, err := runEngine(loan, events, uc.clock.Today(), uc.engine.Strategy, uc.engine.MaxDays, uc.metrics)
	if err != nil {
		return nil, err
	}
	if outstanding := res.Summary.Outstanding(); outstanding.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrOutstandingBalance, outstanding.StringFixed(2))
	}

	now := time.Now().UTC()
	if err := uc.loanRepo.Close(txCtx, tx, id, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusClosed
	loan.ClosedAt = &now
	loan.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.LoansClosed.Inc()
	}
	uc.logger.Info().Str("loan_id", id).Msg("loan closed")

	return loan, nil
}

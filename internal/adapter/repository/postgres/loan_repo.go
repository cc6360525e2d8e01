package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/postgres/generated"
	"github.com/iho/loanledger/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository. db is usually a *pgxpool.Pool.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{
		queries: generated.New(db),
	}
}

// Create inserts a loan within tx.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	return queriesFor(tx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:            loan.ID,
		BorrowerName:  loan.BorrowerName,
		BorrowerRef:   loan.BorrowerRef,
		Principal:     decimalToNumeric(loan.Principal),
		AnnualRate:    decimalToNumeric(loan.AnnualRate),
		Allocation:    string(loan.Allocation),
		RepaymentMode: string(loan.Repayment),
		TenureMonths:  intPtrToPgInt4(loan.TenureMonths),
		StartDate:     dayToPgDate(loan.StartDate),
		Status:        string(loan.Status),
		Note:          loan.Note,
		CreatedAt:     timeToPgTimestamptz(loan.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(loan.UpdatedAt),
	})
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan by ID and locks its row until tx ends.
// The lock serializes event inserts on the loan.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	row, err := queriesFor(tx).GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// List returns loans, newest first.
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoans(ctx, generated.ListLoansParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, len(rows))
	for i, row := range rows {
		loans[i] = rowToLoan(row)
	}

	return loans, nil
}

// Close marks an active loan closed. A loan that is missing or already closed yields
// domain.ErrLoanNotFound.
func (r *LoanRepository) Close(ctx context.Context, tx usecase.Transaction, id string, closedAt time.Time) error {
	n, err := queriesFor(tx).CloseLoan(ctx, generated.CloseLoanParams{
		ID:       id,
		ClosedAt: timeToPgTimestamptz(closedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:           row.ID,
		BorrowerName: row.BorrowerName,
		BorrowerRef:  row.BorrowerRef,
		Principal:    numericToDecimal(row.Principal),
		AnnualRate:   numericToDecimal(row.AnnualRate),
		Allocation:   domain.AllocationMode(row.Allocation),
		Repayment:    domain.RepaymentMode(row.RepaymentMode),
		TenureMonths: pgInt4ToIntPtr(row.TenureMonths),
		StartDate:    pgDateToDay(row.StartDate),
		Status:       domain.LoanStatus(row.Status),
		Note:         row.Note,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		ClosedAt:     pgTimestamptzToTimePtr(row.ClosedAt),
	}
}

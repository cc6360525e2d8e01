package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

var loanColumns = []string{
	"id", "borrower_name", "borrower_ref", "principal", "annual_rate", "allocation",
	"repayment_mode", "tenure_months", "start_date", "status", "note",
	"created_at", "updated_at", "closed_at",
}

var eventColumns = []string{
	"id", "loan_id", "seq", "type", "kind", "amount", "event_date", "narration", "created_at",
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestLoanRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectExec("INSERT INTO loans").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	err := NewLoanRepository(pool).Create(context.Background(), tx, &domain.Loan{
		ID:           "loan-1",
		BorrowerName: "Asha",
		Principal:    decimal.NewFromInt(10000),
		AnnualRate:   decimal.NewFromInt(12),
		Allocation:   domain.InterestFirst,
		Repayment:    domain.RepaymentNormal,
		StartDate:    calendar.New(2025, time.July, 1),
		Status:       domain.LoanStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestLoanRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(loanColumns).AddRow(
		"loan-1", "Asha", "ref-9", "10000.50", "12", "principal_first",
		"emi", int64(12), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "active", "",
		created, created, nil,
	)
	pool.ExpectQuery("SELECT (.+) FROM loans WHERE id = \\$1").
		WithArgs("loan-1").
		WillReturnRows(rows)

	loan, err := NewLoanRepository(pool).GetByID(context.Background(), "loan-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", loan.BorrowerName)
	assert.True(t, loan.Principal.Equal(decimal.RequireFromString("10000.5")), "principal %s", loan.Principal)
	assert.True(t, loan.AnnualRate.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, domain.PrincipalFirst, loan.Allocation)
	assert.Equal(t, domain.RepaymentEMI, loan.Repayment)
	require.NotNil(t, loan.TenureMonths)
	assert.Equal(t, 12, *loan.TenureMonths)
	assert.Equal(t, "2025-07-01", loan.StartDate.String())
	assert.Nil(t, loan.ClosedAt)
	assertExpectations(t, pool)
}

func TestLoanRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM loans WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewLoanRepository(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanRepository_GetByIDForUpdateNotFound(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectQuery("FOR UPDATE").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewLoanRepository(pool).GetByIDForUpdate(context.Background(), tx, "missing")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanRepository_ListQueryError(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("connection reset")
	pool.ExpectQuery("FROM loans ORDER BY").
		WithArgs(int32(20), int32(40)).
		WillReturnError(boom)

	_, err := NewLoanRepository(pool).List(context.Background(), 20, 40)
	assert.ErrorIs(t, err, boom)
	assertExpectations(t, pool)
}

func TestLoanRepository_Close(t *testing.T) {
	closedAt := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active loan", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginTx(t, pool)
		pool.ExpectExec("UPDATE loans SET status = 'closed'").
			WithArgs("loan-1", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewLoanRepository(pool).Close(context.Background(), tx, "loan-1", closedAt))
		assertExpectations(t, pool)
	})

	t.Run("no active row", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginTx(t, pool)
		pool.ExpectExec("UPDATE loans SET status = 'closed'").
			WithArgs("loan-1", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewLoanRepository(pool).Close(context.Background(), tx, "loan-1", closedAt)
		assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	})
}

func TestEventRepository_CreateAssignsSeq(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectQuery("COALESCE\\(MAX\\(seq\\), 0\\) \\+ 1").
		WithArgs("loan-1").
		WillReturnRows(pgxmock.NewRows([]string{"next_seq"}).AddRow(int64(4)))
	pool.ExpectExec("INSERT INTO loan_events").
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	event := &domain.Event{
		ID:     "evt-1",
		LoanID: "loan-1",
		Type:   domain.EventPayment,
		Kind:   domain.EntryKindEMI,
		Amount: decimal.NewFromInt(500),
		Date:   calendar.New(2025, time.August, 1),
	}
	require.NoError(t, NewEventRepository(pool).Create(context.Background(), tx, event))
	assert.Equal(t, int64(4), event.Seq)
	assertExpectations(t, pool)
}

func TestEventRepository_CreateInsertFailureKeepsSeq(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	boom := errors.New("insert failed")
	pool.ExpectQuery("COALESCE").
		WithArgs("loan-1").
		WillReturnRows(pgxmock.NewRows([]string{"next_seq"}).AddRow(int64(2)))
	pool.ExpectExec("INSERT INTO loan_events").
		WithArgs(anyArgs(9)...).
		WillReturnError(boom)

	event := &domain.Event{ID: "evt-2", LoanID: "loan-1", Type: domain.EventPayment, Amount: decimal.NewFromInt(1)}
	err := NewEventRepository(pool).Create(context.Background(), tx, event)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, event.Seq)
}

func TestEventRepository_ListByLoan(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(eventColumns).
		AddRow("evt-1", "loan-1", int64(1), "disbursal", "disbursal", "10000",
			time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "Loan given", created).
		AddRow("evt-2", "loan-1", int64(2), "payment", "emi", "875.25",
			time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "", created)
	pool.ExpectQuery("FROM loan_events WHERE loan_id = \\$1 ORDER BY event_date, seq, id").
		WithArgs("loan-1").
		WillReturnRows(rows)

	events, err := NewEventRepository(pool).ListByLoan(context.Background(), "loan-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventDisbursal, events[0].Type)
	assert.Equal(t, "Loan given", events[0].Narration)
	assert.Equal(t, domain.EntryKindEMI, events[1].Kind)
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, "2025-08-01", events[1].Date.String())
	assert.True(t, events[1].Amount.Equal(decimal.RequireFromString("875.25")), "amount %s", events[1].Amount)
	assertExpectations(t, pool)
}

package usecase

import (
	"context"
	"time"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
)

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
	Close(ctx context.Context, tx Transaction, id string, closedAt time.Time) error
}

// EventRepository defines data access for loan events. Events are append-only.
type EventRepository interface {
	// Create inserts the event and assigns its per-loan sequence number.
	// The caller must hold the loan row lock in tx.
	Create(ctx context.Context, tx Transaction, event *domain.Event) error
	ListByLoan(ctx context.Context, loanID string) ([]domain.Event, error)
	ListByLoanTx(ctx context.Context, tx Transaction, loanID string) ([]domain.Event, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries operations that failed with transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Clock supplies the current calendar day.
type Clock interface {
	Today() calendar.Day
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request may be retried.
	Release(ctx context.Context, key string) error
}

// InterestCheckQuota counts interest previews per loan and calendar month.
type InterestCheckQuota interface {
	// Consume records one check for loanID in the month containing day and returns the
	// number of checks used in that month, this one included.
	Consume(ctx context.Context, loanID string, day calendar.Day) (int64, error)
	// Used returns the checks already used in the month containing day.
	Used(ctx context.Context, loanID string, day calendar.Day) (int64, error)
}

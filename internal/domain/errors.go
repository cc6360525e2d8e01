package domain

import "errors"

var (
	// Event errors
	ErrInvalidEventOrder = errors.New("payment date cannot be before the first disbursal date")
	ErrInvalidDate       = errors.New("invalid date")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrInvalidEventType  = errors.New("invalid event type")
	ErrInvalidEntryKind  = errors.New("invalid ledger entry kind")
	ErrNarrationTooLong  = errors.New("narration too long")

	// Loan errors
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanClosed            = errors.New("loan is closed")
	ErrOutstandingBalance    = errors.New("loan still has an outstanding balance")
	ErrInvalidRate           = errors.New("annual rate must be zero or positive")
	ErrInvalidAllocationMode = errors.New("invalid allocation mode")
	ErrInvalidRepaymentMode  = errors.New("invalid repayment mode")
	ErrInvalidBorrower       = errors.New("invalid borrower name")

	// Computation errors
	ErrSpanTooLarge       = errors.New("simulation span exceeds the configured maximum")
	ErrInterestCheckLimit = errors.New("interest check limit reached for this month")
)

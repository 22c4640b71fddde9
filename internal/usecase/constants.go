package usecase

import "time"

const (
	// DefaultOperationTimeout bounds one credit, debit or transfer including
	// all of its optimistic retries.
	DefaultOperationTimeout = 10 * time.Second

	// MaxAccountNumberAttempts bounds account number regeneration on collision.
	MaxAccountNumberAttempts = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names used for logging and metrics.
const (
	OperationCredit   = "credit"
	OperationDebit    = "debit"
	OperationTransfer = "transfer"
	OperationActivate = "activate"
	OperationFreeze   = "freeze"
	OperationUnfreeze = "unfreeze"
	OperationClose    = "close"
)

// Operation outcomes used for metrics.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

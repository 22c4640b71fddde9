package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferState tracks a transfer through the orchestrator.
type TransferState string

const (
	TransferStateValidating TransferState = "VALIDATING"
	TransferStateDebiting   TransferState = "DEBITING"
	TransferStateCrediting  TransferState = "CREDITING"
	TransferStateCommitted  TransferState = "COMMITTED"
	// Rejected: validation failed before any mutation was computed.
	TransferStateRejected TransferState = "REJECTED"
	// Aborted: a mutation was computed but never committed.
	TransferStateAborted TransferState = "ABORTED"
)

// Transfer is a money movement between two accounts.
type Transfer struct {
	Reference         string
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Description       string
	State             TransferState
	Attempts          int
	CreatedAt         time.Time
	CommittedAt       *time.Time
}

// Validate checks the request before any account is loaded.
func (t *Transfer) Validate() error {
	if t.FromAccountNumber == t.ToAccountNumber {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// Terminal reports whether the transfer reached an end state.
func (t *Transfer) Terminal() bool {
	switch t.State {
	case TransferStateCommitted, TransferStateRejected, TransferStateAborted:
		return true
	}
	return false
}

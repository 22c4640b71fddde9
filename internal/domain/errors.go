package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Balance mutation errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountNotOperable     = errors.New("account is not operable")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrConcurrentModification = errors.New("account was modified concurrently")
	ErrCurrencyMismatch       = errors.New("cannot transfer between different currencies")

	// Lifecycle errors
	ErrAccountAlreadyActive   = errors.New("account is already active")
	ErrAccountAlreadyFrozen   = errors.New("account is already frozen")
	ErrAccountNotFrozen       = errors.New("account is not frozen")
	ErrAccountClosed          = errors.New("account is closed")
	ErrNonZeroBalance         = errors.New("account balance must be zero to close")
	ErrBelowMinimumBalance    = errors.New("balance is below minimum balance")
	ErrInvalidMinimumBalance  = errors.New("minimum balance cannot be negative")
	ErrInvalidOverdraftLimit  = errors.New("overdraft limit cannot be negative")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrAccountNumberExhausted = errors.New("unable to generate unique account number")
	ErrInvalidAccountNumber   = errors.New("invalid account number")
)

// InsufficientBalanceError reports a debit that would cross the effective floor.
type InsufficientBalanceError struct {
	AccountNumber string
	Requested     decimal.Decimal
	Available     decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in account %s: requested %s, available %s",
		e.AccountNumber, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

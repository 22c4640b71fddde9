package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IsOperable reports whether the account may be credited or debited at all.
func (a *Account) IsOperable() bool {
	return a.Status == AccountStatusActive && !a.IsFrozen
}

// EffectiveFloor is the lowest balance a debit may leave behind.
func (a *Account) EffectiveFloor() decimal.Decimal {
	if a.OverdraftAllowed {
		return a.MinimumBalance.Sub(a.OverdraftLimit)
	}
	return a.MinimumBalance
}

// CheckCredit returns the reason a credit of amount is not permitted, or nil.
func (a *Account) CheckCredit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.IsOperable() {
		return fmt.Errorf("%w: %s", ErrAccountNotOperable, a.operabilityReason())
	}
	return nil
}

// CheckDebit returns the reason a debit of amount is not permitted, or nil.
// A floor breach yields *InsufficientBalanceError.
func (a *Account) CheckDebit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.IsOperable() {
		return fmt.Errorf("%w: %s", ErrAccountNotOperable, a.operabilityReason())
	}
	if a.Balance.Sub(amount).LessThan(a.EffectiveFloor()) {
		return &InsufficientBalanceError{
			AccountNumber: a.AccountNumber,
			Requested:     amount,
			Available:     a.AvailableBalance,
		}
	}
	return nil
}

// CanCredit reports whether a credit of amount is permitted.
func (a *Account) CanCredit(amount decimal.Decimal) bool {
	return a.CheckCredit(amount) == nil
}

// CanDebit reports whether a debit of amount is permitted.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.CheckDebit(amount) == nil
}

// ValidateInvariants checks the state a committed account must always satisfy.
func (a *Account) ValidateInvariants() error {
	if !a.Balance.Equal(a.AvailableBalance) {
		return fmt.Errorf("account %s: balance %s differs from available balance %s",
			a.AccountNumber, a.Balance, a.AvailableBalance)
	}
	if a.MinimumBalance.IsNegative() {
		return fmt.Errorf("account %s: %w", a.AccountNumber, ErrInvalidMinimumBalance)
	}
	if a.OverdraftLimit.IsNegative() {
		return fmt.Errorf("account %s: %w", a.AccountNumber, ErrInvalidOverdraftLimit)
	}
	// Pending accounts may sit below the floor until activation rejects them.
	if a.Status == AccountStatusActive && a.Balance.LessThan(a.EffectiveFloor()) {
		return fmt.Errorf("account %s: balance %s below floor %s: %w",
			a.AccountNumber, a.Balance, a.EffectiveFloor(), ErrBelowMinimumBalance)
	}
	if a.Status == AccountStatusClosed && !a.Balance.IsZero() {
		return fmt.Errorf("account %s: closed with balance %s", a.AccountNumber, a.Balance)
	}
	return nil
}

func (a *Account) operabilityReason() string {
	switch {
	case a.Status == AccountStatusClosed:
		return "account is closed"
	case a.IsFrozen:
		return "account is frozen"
	case a.Status != AccountStatusActive:
		return "account is " + string(a.Status)
	default:
		return "account is inactive"
	}
}

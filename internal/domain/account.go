package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// Account is a customer account whose balance the ledger core mutates.
type Account struct {
	ID                  string
	AccountNumber       string
	Type                AccountType
	Name                string
	Currency            string
	Balance             decimal.Decimal
	AvailableBalance    decimal.Decimal
	MinimumBalance      decimal.Decimal
	OverdraftAllowed    bool
	OverdraftLimit      decimal.Decimal
	DailyLimit          *decimal.Decimal
	MonthlyLimit        *decimal.Decimal
	Status              AccountStatus
	IsFrozen            bool
	LastTransactionDate *time.Time
	ActivatedAt         *time.Time
	ClosedAt            *time.Time
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Clone returns a deep copy, so a failed attempt never leaks into shared state.
func (a *Account) Clone() *Account {
	c := *a
	c.DailyLimit = cloneDecimal(a.DailyLimit)
	c.MonthlyLimit = cloneDecimal(a.MonthlyLimit)
	c.LastTransactionDate = cloneTime(a.LastTransactionDate)
	c.ActivatedAt = cloneTime(a.ActivatedAt)
	c.ClosedAt = cloneTime(a.ClosedAt)
	return &c
}

// Activate moves a pending (or otherwise inactive) account to ACTIVE.
// The balance must already satisfy the effective floor.
func (a *Account) Activate(now time.Time) error {
	switch a.Status {
	case AccountStatusActive:
		return ErrAccountAlreadyActive
	case AccountStatusClosed:
		return ErrAccountClosed
	}

	if a.Balance.LessThan(a.EffectiveFloor()) {
		return ErrBelowMinimumBalance
	}

	a.Status = AccountStatusActive
	a.ActivatedAt = &now
	a.UpdatedAt = now
	return nil
}

// Freeze blocks balance mutation without changing status.
func (a *Account) Freeze(now time.Time) error {
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	if a.IsFrozen {
		return ErrAccountAlreadyFrozen
	}

	a.IsFrozen = true
	a.UpdatedAt = now
	return nil
}

// Unfreeze lifts a freeze.
func (a *Account) Unfreeze(now time.Time) error {
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	if !a.IsFrozen {
		return ErrAccountNotFrozen
	}

	a.IsFrozen = false
	a.UpdatedAt = now
	return nil
}

// Close is terminal and requires an exactly zero balance.
func (a *Account) Close(now time.Time) error {
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}

	a.Status = AccountStatusClosed
	a.ClosedAt = &now
	a.UpdatedAt = now
	return nil
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

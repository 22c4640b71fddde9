package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit adds amount to the balance of an operable account.
// It mutates the in-memory account only; persisting it is the caller's job.
func (a *Account) Credit(amount decimal.Decimal, now time.Time) error {
	if err := a.CheckCredit(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Add(amount)
	a.AvailableBalance = a.AvailableBalance.Add(amount)
	a.touch(now)
	return nil
}

// Debit subtracts amount from the balance, never crossing the effective floor.
func (a *Account) Debit(amount decimal.Decimal, now time.Time) error {
	if err := a.CheckDebit(amount); err != nil {
		return err
	}

	a.Balance = a.Balance.Sub(amount)
	a.AvailableBalance = a.AvailableBalance.Sub(amount)
	a.touch(now)
	return nil
}

func (a *Account) touch(now time.Time) {
	a.LastTransactionDate = &now
	a.UpdatedAt = now
}

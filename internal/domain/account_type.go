package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType selects the product rules applied to an account.
type AccountType string

const (
	AccountTypeSavings      AccountType = "SAVINGS"
	AccountTypeChecking     AccountType = "CHECKING"
	AccountTypeBusiness     AccountType = "BUSINESS"
	AccountTypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

// accountNumberPrefixes maps a type to the prefix of its account numbers.
var accountNumberPrefixes = map[AccountType]string{
	AccountTypeSavings:      "SAV",
	AccountTypeChecking:     "CHK",
	AccountTypeBusiness:     "BUS",
	AccountTypeFixedDeposit: "FD",
}

const defaultAccountNumberPrefix = "ACC"

// ParseAccountType parses a case-insensitive type name.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := accountNumberPrefixes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
	return t, nil
}

// AccountNumberPrefix returns the account number prefix for t.
func (t AccountType) AccountNumberPrefix() string {
	if p, ok := accountNumberPrefixes[t]; ok {
		return p
	}
	return defaultAccountNumberPrefix
}

// MinimumBalancePolicy holds the minimum balance floor per account type.
type MinimumBalancePolicy struct {
	Floors  map[AccountType]decimal.Decimal
	Default decimal.Decimal
}

// DefaultMinimumBalancePolicy returns the stock product floors.
func DefaultMinimumBalancePolicy() MinimumBalancePolicy {
	return MinimumBalancePolicy{
		Floors: map[AccountType]decimal.Decimal{
			AccountTypeSavings:      decimal.NewFromInt(1000),
			AccountTypeChecking:     decimal.NewFromInt(500),
			AccountTypeBusiness:     decimal.NewFromInt(5000),
			AccountTypeFixedDeposit: decimal.NewFromInt(10000),
		},
		Default: decimal.NewFromInt(1000),
	}
}

// MinimumFor returns the floor configured for t.
func (p MinimumBalancePolicy) MinimumFor(t AccountType) decimal.Decimal {
	if floor, ok := p.Floors[t]; ok {
		return floor
	}
	return p.Default
}

// Validate rejects negative floors.
func (p MinimumBalancePolicy) Validate() error {
	if p.Default.IsNegative() {
		return fmt.Errorf("%w: default %s", ErrInvalidMinimumBalance, p.Default)
	}
	for t, floor := range p.Floors {
		if floor.IsNegative() {
			return fmt.Errorf("%w: %s %s", ErrInvalidMinimumBalance, t, floor)
		}
	}
	return nil
}

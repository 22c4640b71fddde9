package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// Validation constants
const (
	MaxAccountNameLength   = 100
	MaxDescriptionLength   = 255
	MinAccountNumberLength = 15
	MaxAccountNumberLength = 20
	DefaultCurrency        = "KES"
	// MoneyScale is the number of fractional digits stored for any amount.
	MoneyScale = 2
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateAmount validates a credit, debit or transfer amount. There is no
// upper bound.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !HasMoneyScale(amount) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MoneyScale)
	}

	return nil
}

// HasMoneyScale reports whether d needs no more than MoneyScale fractional
// digits. Trailing zeros do not count, so 1.500 passes and 0.004 does not.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// NormalizeCurrency upper-cases the code, falling back to DefaultCurrency.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency, nil
	}

	if !currencyRegex.MatchString(currency) {
		return "", fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}

	return currency, nil
}

// ValidAccountNumber checks length and that the number carries a known prefix.
func ValidAccountNumber(number string) bool {
	if len(number) < MinAccountNumberLength || len(number) > MaxAccountNumberLength {
		return false
	}

	if strings.HasPrefix(number, defaultAccountNumberPrefix) {
		return true
	}
	for _, prefix := range accountNumberPrefixes {
		if strings.HasPrefix(number, prefix) {
			return true
		}
	}

	return false
}

// AccountTypeFromNumber recovers the type encoded in an account number prefix.
func AccountTypeFromNumber(number string) (AccountType, bool) {
	for t, prefix := range accountNumberPrefixes {
		if strings.HasPrefix(number, prefix) {
			return t, true
		}
	}
	return "", false
}

// TruncateDescription bounds a free-text description.
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > MaxDescriptionLength {
		return s[:MaxDescriptionLength]
	}
	return s
}

package idgen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/telepesa/ledger/internal/domain"
)

const accountNumberDigits = 8

var accountNumberSpace = big.NewInt(100_000_000)

// AccountNumberGenerator produces numbers of the form PREFIX + yyyyMM + 8
// random digits, e.g. SAV20260312345678.
type AccountNumberGenerator struct {
	rand io.Reader
}

// NewAccountNumberGenerator creates a generator backed by crypto/rand.
func NewAccountNumberGenerator() *AccountNumberGenerator {
	return &AccountNumberGenerator{rand: rand.Reader}
}

// NewAccountNumberGeneratorFrom creates a generator reading randomness from r.
func NewAccountNumberGeneratorFrom(r io.Reader) *AccountNumberGenerator {
	return &AccountNumberGenerator{rand: r}
}

// Generate returns a candidate number. Uniqueness is enforced by the store.
func (g *AccountNumberGenerator) Generate(accountType domain.AccountType, now time.Time) (string, error) {
	n, err := rand.Int(g.rand, accountNumberSpace)
	if err != nil {
		return "", fmt.Errorf("read random digits: %w", err)
	}

	return fmt.Sprintf("%s%s%0*d",
		accountType.AccountNumberPrefix(),
		now.UTC().Format("200601"),
		accountNumberDigits,
		n.Int64(),
	), nil
}

package usecase

import (
	"context"
	"time"

	"github.com/telepesa/ledger/internal/domain"
)

// AccountRepository is the persistence gateway for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	// SaveAll writes every account if and only if each stored version still
	// equals account.Version. Any mismatch rejects the whole batch with
	// domain.ErrConcurrentModification. On success each account's Version
	// is advanced to the stored value.
	SaveAll(ctx context.Context, accounts []*domain.Account) error
}

// MovementRecorder receives committed movements for statements and audit.
type MovementRecorder interface {
	Record(ctx context.Context, movement domain.Movement) error
}

// Retrier re-runs operation while it fails with a retryable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AccountNumberGenerator produces candidate account numbers.
type AccountNumberGenerator interface {
	Generate(accountType domain.AccountType, now time.Time) (string, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops key so a failed request can be retried with it.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics observes ledger operations.
type LedgerMetrics interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	ObserveConflict(operation string)
	ObserveAmount(operation string, amount float64)
	ObserveRecorderFailure()
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telepesa/ledger/internal/domain"
)

// IsRejection reports whether err is a business rule rejection that no retry
// can fix without a change of request or account state.
func IsRejection(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidAmount,
		domain.ErrAccountNotFound,
		domain.ErrAccountNotOperable,
		domain.ErrInsufficientBalance,
		domain.ErrSameAccount,
		domain.ErrCurrencyMismatch,
		domain.ErrAccountAlreadyActive,
		domain.ErrAccountAlreadyFrozen,
		domain.ErrAccountNotFrozen,
		domain.ErrAccountClosed,
		domain.ErrNonZeroBalance,
		domain.ErrBelowMinimumBalance,
		domain.ErrInvalidMinimumBalance,
		domain.ErrInvalidOverdraftLimit,
		domain.ErrInvalidCurrency,
		domain.ErrInvalidAccountName,
		domain.ErrInvalidAccountType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeCommitted
	case errors.Is(err, domain.ErrConcurrentModification):
		return OutcomeConflict
	case IsRejection(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// asConcurrentModification folds a blown operation deadline into the
// retryable conflict kind so callers handle both the same way.
func asConcurrentModification(err error) error {
	if err == nil || errors.Is(err, domain.ErrConcurrentModification) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrConcurrentModification, err)
	}
	return err
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, domain.Movement) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string, time.Duration) {}
func (nopMetrics) ObserveConflict(string)                         {}
func (nopMetrics) ObserveAmount(string, float64)                  {}
func (nopMetrics) ObserveRecorderFailure()                        {}

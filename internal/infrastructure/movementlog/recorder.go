// Package movementlog provides MovementRecorder implementations that do not
// need external infrastructure.
package movementlog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

// LogRecorder writes each committed movement as a structured log line.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a new LogRecorder.
func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With().Str("component", "movements").Logger()}
}

// Record logs the movement.
func (r *LogRecorder) Record(_ context.Context, movement domain.Movement) error {
	p := movement.Payload()

	event := r.logger.Info().
		Str("reference", p.Reference).
		Str("kind", p.Kind).
		Str("amount", p.Amount).
		Str("occurred_at", p.OccurredAt)
	if p.Currency != "" {
		event = event.Str("currency", p.Currency)
	}
	if p.FromAccountNumber != "" {
		event = event.Str("from_account_number", p.FromAccountNumber).Str("from_balance_after", p.FromBalanceAfter)
	}
	if p.ToAccountNumber != "" {
		event = event.Str("to_account_number", p.ToAccountNumber).Str("to_balance_after", p.ToBalanceAfter)
	}
	if p.Description != "" {
		event = event.Str("description", p.Description)
	}
	event.Msg("movement committed")

	return nil
}

// Multi fans a movement out to every recorder. All recorders are called even
// when one fails; the failures are joined.
type Multi []usecase.MovementRecorder

// Record forwards the movement to each recorder in order.
func (m Multi) Record(ctx context.Context, movement domain.Movement) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, movement); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

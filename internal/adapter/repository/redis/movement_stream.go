package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/telepesa/ledger/internal/domain"
)

const defaultStreamMaxLen = 100000

// MovementStream implements usecase.MovementRecorder by appending each
// committed movement to a Redis stream for downstream statement builders.
type MovementStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewMovementStream creates a new MovementStream. maxLen caps the stream
// approximately; zero uses the default.
func NewMovementStream(client *redis.Client, stream string, maxLen int64) *MovementStream {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &MovementStream{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Record appends the movement. Empty payload fields are omitted.
func (s *MovementStream) Record(ctx context.Context, movement domain.Movement) error {
	p := movement.Payload()

	values := map[string]any{
		"reference":   p.Reference,
		"kind":        p.Kind,
		"amount":      p.Amount,
		"occurred_at": p.OccurredAt,
	}
	optional := map[string]string{
		"from_account_number": p.FromAccountNumber,
		"to_account_number":   p.ToAccountNumber,
		"currency":            p.Currency,
		"description":         p.Description,
		"from_balance_after":  p.FromBalanceAfter,
		"to_balance_after":    p.ToBalanceAfter,
	}
	for k, v := range optional {
		if v != "" {
			values[k] = v
		}
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("append movement %s to %s: %w", p.Reference, s.stream, err)
	}

	return nil
}

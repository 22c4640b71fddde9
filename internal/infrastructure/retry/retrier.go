package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/telepesa/ledger/internal/domain"
)

// Defaults for the optimistic concurrency loop.
const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 10 * time.Millisecond
	DefaultMaxInterval     = 500 * time.Millisecond
	DefaultMaxElapsedTime  = 10 * time.Second
)

// Config holds retrier settings.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// Retrier implements usecase.Retrier with exponential backoff. Only
// domain.ErrConcurrentModification is retried; every other error stops
// the loop immediately.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a retrier with default settings.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return New(Config{}, logger)
}

// New creates a retrier from cfg. Zero fields take the defaults.
func New(cfg Config, logger zerolog.Logger) *Retrier {
	r := &Retrier{
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		maxElapsedTime:  cfg.MaxElapsedTime,
		logger:          logger,
	}
	if r.maxRetries <= 0 {
		r.maxRetries = DefaultMaxRetries
	}
	if r.initialInterval <= 0 {
		r.initialInterval = DefaultInitialInterval
	}
	if r.maxInterval <= 0 {
		r.maxInterval = DefaultMaxInterval
	}
	if r.maxElapsedTime <= 0 {
		r.maxElapsedTime = DefaultMaxElapsedTime
	}
	return r
}

// Retry runs operation until it succeeds, fails permanently, exhausts
// maxRetries or ctx is done. On exhaustion the last conflict is returned.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			r.logger.Warn().Err(err).Int("retries", r.maxRetries).Msg("retries exhausted")
			return backoff.Permanent(err)
		}

		r.logger.Debug().Err(err).Int("retry", retryCount).Msg("optimistic conflict, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

// IsRetryable reports whether err is an optimistic concurrency conflict.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrConcurrentModification)
}

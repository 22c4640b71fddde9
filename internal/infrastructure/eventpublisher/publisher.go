package eventpublisher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

// ErrQueueFull is returned by Record when the buffer has no room.
var ErrQueueFull = errors.New("movement queue full")

// EventPublisher decouples the request path from a slow movement sink. Record
// enqueues; Start forwards queued movements to the downstream recorder.
type EventPublisher struct {
	downstream   usecase.MovementRecorder
	logger       zerolog.Logger
	queue        chan domain.Movement
	flushTimeout time.Duration
}

// Config for EventPublisher.
type Config struct {
	Downstream   usecase.MovementRecorder
	Logger       zerolog.Logger
	BufferSize   int           // Movements held before Record reports ErrQueueFull
	FlushTimeout time.Duration // Upper bound for draining the queue on shutdown
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}

	return &EventPublisher{
		downstream:   cfg.Downstream,
		logger:       cfg.Logger,
		queue:        make(chan domain.Movement, cfg.BufferSize),
		flushTimeout: cfg.FlushTimeout,
	}
}

// Record enqueues the movement without blocking.
func (ep *EventPublisher) Record(_ context.Context, movement domain.Movement) error {
	select {
	case ep.queue <- movement:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued movements.
func (ep *EventPublisher) Pending() int {
	return len(ep.queue)
}

// Start forwards movements until ctx is cancelled, then drains what is left
// within the flush timeout.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("buffer_size", cap(ep.queue)).
		Dur("flush_timeout", ep.flushTimeout).
		Msg("event publisher started")

	for {
		select {
		case <-ctx.Done():
			ep.drain()
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case m := <-ep.queue:
			ep.publish(ctx, m)
		}
	}
}

func (ep *EventPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), ep.flushTimeout)
	defer cancel()

	for {
		select {
		case m := <-ep.queue:
			ep.publish(ctx, m)
		default:
			return
		}
		if ctx.Err() != nil {
			ep.logger.Warn().Int("dropped", len(ep.queue)).Msg("flush timeout reached")
			return
		}
	}
}

func (ep *EventPublisher) publish(ctx context.Context, m domain.Movement) {
	if err := ep.downstream.Record(ctx, m); err != nil {
		ep.logger.Error().Err(err).
			Str("reference", m.Reference).
			Str("kind", m.Kind).
			Msg("failed to publish movement")
		return
	}

	ep.logger.Debug().Str("reference", m.Reference).Str("kind", m.Kind).Msg("movement published")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/telepesa/ledger/internal/adapter/http"
	"github.com/telepesa/ledger/internal/adapter/http/handler"
	"github.com/telepesa/ledger/internal/adapter/http/middleware"
	"github.com/telepesa/ledger/internal/adapter/repository/memory"
	postgresRepo "github.com/telepesa/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/telepesa/ledger/internal/adapter/repository/redis"
	"github.com/telepesa/ledger/internal/infrastructure/config"
	"github.com/telepesa/ledger/internal/infrastructure/eventpublisher"
	"github.com/telepesa/ledger/internal/infrastructure/idgen"
	"github.com/telepesa/ledger/internal/infrastructure/metrics"
	"github.com/telepesa/ledger/internal/infrastructure/movementlog"
	"github.com/telepesa/ledger/internal/infrastructure/postgres"
	"github.com/telepesa/ledger/internal/infrastructure/redis"
	"github.com/telepesa/ledger/internal/infrastructure/retry"
	"github.com/telepesa/ledger/internal/usecase"
)

// storage is an account repository that can report its reachability.
type storage interface {
	usecase.AccountRepository
	Ping(ctx context.Context) error
}

// app is the wired service.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	policy, err := cfg.MinimumBalancePolicy()
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegisterer(registry)

	checks := map[string]handler.Pinger{"storage": store}

	var (
		repo     usecase.AccountRepository = store
		recorder usecase.MovementRecorder  = movementlog.NewLogRecorder(logger)
		idemp    usecase.IdempotencyStore
	)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })

		repo = redisRepo.NewCachedAccountRepository(store, client, cfg.AccountNumberCacheTTL,
			redisRepo.WithCacheObserver(m),
			redisRepo.WithCacheLogger(logger))
		idemp = redisRepo.NewIdempotencyStore(client)
		recorder = newStreamPublisher(client, cfg, recorder, logger, a)
	}

	retrier := retry.New(retry.Config{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		MaxElapsedTime:  cfg.OperationTimeout,
	}, logger)

	accountUC := usecase.NewAccountUseCase(repo, idgen.NewULIDGenerator(), idgen.NewAccountNumberGenerator(), retrier,
		usecase.WithMinimumBalancePolicy(policy),
		usecase.WithAccountMetrics(m),
		usecase.WithAccountLogger(logger),
		usecase.WithAccountOperationTimeout(cfg.OperationTimeout))
	ledgerUC := usecase.NewLedgerUseCase(repo, retrier,
		usecase.WithMovementRecorder(recorder),
		usecase.WithLedgerMetrics(m),
		usecase.WithLogger(logger),
		usecase.WithOperationTimeout(cfg.OperationTimeout))

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RateLimitHits.Inc)

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(checks),
		Logger:           logger,
		IdempotencyStore: idemp,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		Metrics:          m,
		Gatherer:         registry,
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger, a *app) (storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn().Msg("using in-memory storage, balances are lost on restart")
		return memory.NewAccountStore(), nil
	case config.StoragePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.DatabaseMigrationsPath, logger); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to postgres")

		return postgresRepo.NewAccountRepository(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// newStreamPublisher queues movements for the Redis stream and the log.
func newStreamPublisher(client *goredis.Client, cfg *config.Config, logRecorder usecase.MovementRecorder, logger zerolog.Logger, a *app) usecase.MovementRecorder {
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		Downstream: movementlog.Multi{
			redisRepo.NewMovementStream(client, cfg.MovementStream, 0),
			logRecorder,
		},
		Logger:       logger,
		FlushTimeout: cfg.HTTPShutdownTimeout,
	})
	return a.publisher
}

// runBackground starts the publisher and the limiter janitor until ctx ends.
func (a *app) runBackground(ctx context.Context, logger zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		if a.publisher != nil {
			pubDone := make(chan struct{})
			go func() {
				defer close(pubDone)
				a.publisher.Start(ctx)
			}()
			defer func() { <-pubDone }()
		}

		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := a.rateLimiter.CleanupLimiters(time.Hour); n > 0 {
					logger.Debug().Int("removed", n).Msg("dropped idle rate limiters")
				}
			}
		}
	}()

	return done
}

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

const defaultAccountNumberTTL = time.Hour

// CacheObserver is notified of every account number lookup.
type CacheObserver interface {
	ObserveCacheLookup(hit bool)
}

type nopCacheObserver struct{}

func (nopCacheObserver) ObserveCacheLookup(bool) {}

// CachedAccountRepository wraps an AccountRepository with a Redis index from
// account number to account ID. Account rows themselves are never cached, so
// every read still sees the stored version.
type CachedAccountRepository struct {
	usecase.AccountRepository

	client   *redis.Client
	prefix   string
	ttl      time.Duration
	observer CacheObserver
	logger   zerolog.Logger
}

// CacheOption configures a CachedAccountRepository.
type CacheOption func(*CachedAccountRepository)

// WithCacheObserver sets the lookup observer.
func WithCacheObserver(o CacheObserver) CacheOption {
	return func(c *CachedAccountRepository) { c.observer = o }
}

// WithCacheLogger sets the logger used for degraded cache operations.
func WithCacheLogger(l zerolog.Logger) CacheOption {
	return func(c *CachedAccountRepository) { c.logger = l }
}

// NewCachedAccountRepository creates a new CachedAccountRepository.
func NewCachedAccountRepository(inner usecase.AccountRepository, client *redis.Client, ttl time.Duration, opts ...CacheOption) *CachedAccountRepository {
	if ttl <= 0 {
		ttl = defaultAccountNumberTTL
	}
	c := &CachedAccountRepository{
		AccountRepository: inner,
		client:            client,
		prefix:            "ledger:account-number:",
		ttl:               ttl,
		observer:          nopCacheObserver{},
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create stores the account and indexes its number.
func (c *CachedAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := c.AccountRepository.Create(ctx, account); err != nil {
		return err
	}
	c.remember(ctx, account)
	return nil
}

// GetByNumber resolves the number through the index when possible. A stale
// entry is dropped and the lookup falls through to the inner repository.
func (c *CachedAccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	key := c.prefix + accountNumber

	id, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		account, err := c.AccountRepository.GetByID(ctx, id)
		if err == nil && account.AccountNumber == accountNumber {
			c.observer.ObserveCacheLookup(true)
			return account, nil
		}
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		c.forget(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("account_number", accountNumber).Msg("account number cache unavailable")
	}

	c.observer.ObserveCacheLookup(false)

	account, err := c.AccountRepository.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, account)
	return account, nil
}

func (c *CachedAccountRepository) remember(ctx context.Context, account *domain.Account) {
	if err := c.client.Set(ctx, c.prefix+account.AccountNumber, account.ID, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("account_number", account.AccountNumber).Msg("failed to cache account number")
	}
}

func (c *CachedAccountRepository) forget(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to drop stale account number")
	}
}

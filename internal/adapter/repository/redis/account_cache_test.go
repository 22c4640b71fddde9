package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/adapter/repository/memory"
	"github.com/telepesa/ledger/internal/domain"
)

type countingRepo struct {
	*memory.AccountStore
	byNumberCalls int
}

func (r *countingRepo) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	r.byNumberCalls++
	return r.AccountStore.GetByNumber(ctx, number)
}

type lookupCounter struct {
	hits, misses int
}

func (l *lookupCounter) ObserveCacheLookup(hit bool) {
	if hit {
		l.hits++
		return
	}
	l.misses++
}

func testAccount(id, number string) *domain.Account {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Account{
		ID:            id,
		AccountNumber: number,
		Type:          domain.AccountTypeSavings,
		Name:          "Amina",
		Currency:      "KES",
		Balance:       decimal.NewFromInt(1000),
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCachedAccountRepository_CreateIndexesNumber(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &countingRepo{AccountStore: memory.NewAccountStore()}
	counter := &lookupCounter{}
	repo := NewCachedAccountRepository(inner, client, time.Minute, WithCacheObserver(counter))
	ctx := context.Background()

	if err := repo.Create(ctx, testAccount("acc-1", "SAV20260312345678")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := mr.Get(repo.prefix + "SAV20260312345678")
	if err != nil || got != "acc-1" {
		t.Fatalf("expected index entry acc-1, got %q err=%v", got, err)
	}

	account, err := repo.GetByNumber(ctx, "SAV20260312345678")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if account.ID != "acc-1" {
		t.Fatalf("unexpected account %s", account.ID)
	}
	if inner.byNumberCalls != 0 {
		t.Fatalf("expected cache hit to skip inner lookup, got %d calls", inner.byNumberCalls)
	}
	if counter.hits != 1 || counter.misses != 0 {
		t.Fatalf("unexpected lookups hits=%d misses=%d", counter.hits, counter.misses)
	}
}

func TestCachedAccountRepository_MissPopulatesIndex(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &countingRepo{AccountStore: memory.NewAccountStore()}
	ctx := context.Background()
	if err := inner.Create(ctx, testAccount("acc-2", "CHK20260387654321")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	counter := &lookupCounter{}
	repo := NewCachedAccountRepository(inner, client, time.Minute, WithCacheObserver(counter))

	if _, err := repo.GetByNumber(ctx, "CHK20260387654321"); err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if _, err := repo.GetByNumber(ctx, "CHK20260387654321"); err != nil {
		t.Fatalf("second get failed: %v", err)
	}

	if inner.byNumberCalls != 1 {
		t.Fatalf("expected one inner lookup, got %d", inner.byNumberCalls)
	}
	if counter.hits != 1 || counter.misses != 1 {
		t.Fatalf("unexpected lookups hits=%d misses=%d", counter.hits, counter.misses)
	}
	if ttl := mr.TTL(repo.prefix + "CHK20260387654321"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}
}

func TestCachedAccountRepository_StaleEntryFallsThrough(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &countingRepo{AccountStore: memory.NewAccountStore()}
	ctx := context.Background()
	if err := inner.Create(ctx, testAccount("acc-3", "BUS20260311112222")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	repo := NewCachedAccountRepository(inner, client, time.Minute)
	if err := mr.Set(repo.prefix+"BUS20260311112222", "gone"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	account, err := repo.GetByNumber(ctx, "BUS20260311112222")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if account.ID != "acc-3" {
		t.Fatalf("unexpected account %s", account.ID)
	}

	got, _ := mr.Get(repo.prefix + "BUS20260311112222")
	if got != "acc-3" {
		t.Fatalf("expected index to be repaired, got %q", got)
	}
}

func TestCachedAccountRepository_UnknownNumber(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	repo := NewCachedAccountRepository(&countingRepo{AccountStore: memory.NewAccountStore()}, client, time.Minute)

	_, err := repo.GetByNumber(context.Background(), "SAV20260300000000")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(repo.prefix + "SAV20260300000000") {
		t.Fatalf("expected no index entry for unknown account")
	}
}

func TestCachedAccountRepository_RedisDownDegrades(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	inner := &countingRepo{AccountStore: memory.NewAccountStore()}
	ctx := context.Background()
	if err := inner.Create(ctx, testAccount("acc-4", "FD202603123456789")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	mr.Close()

	repo := NewCachedAccountRepository(inner, client, time.Minute)

	account, err := repo.GetByNumber(ctx, "FD202603123456789")
	if err != nil {
		t.Fatalf("expected inner lookup to succeed, got %v", err)
	}
	if account.ID != "acc-4" || inner.byNumberCalls != 1 {
		t.Fatalf("unexpected result id=%s calls=%d", account.ID, inner.byNumberCalls)
	}
}

func TestCachedAccountRepository_SaveAllDelegates(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	inner := &countingRepo{AccountStore: memory.NewAccountStore()}
	repo := NewCachedAccountRepository(inner, client, 0)
	ctx := context.Background()

	if repo.ttl != defaultAccountNumberTTL {
		t.Fatalf("expected default ttl, got %v", repo.ttl)
	}
	if err := repo.Create(ctx, testAccount("acc-5", "SAV20260355556666")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	account, err := repo.GetByID(ctx, "acc-5")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	account.Balance = decimal.NewFromInt(1500)
	if err := repo.SaveAll(ctx, []*domain.Account{account}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := inner.GetByID(ctx, "acc-5")
	if err != nil {
		t.Fatalf("inner get failed: %v", err)
	}
	if !stored.Balance.Equal(decimal.NewFromInt(1500)) || stored.Version != 1 {
		t.Fatalf("unexpected stored account balance=%s version=%d", stored.Balance, stored.Version)
	}
}

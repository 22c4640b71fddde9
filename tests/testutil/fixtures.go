// Package testutil holds helpers for tests that run against a real
// PostgreSQL. They skip unless DATABASE_URL is set.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/telepesa/ledger/internal/adapter/repository/postgres"
	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/infrastructure/postgres"
)

// TestDB provides a migrated database and an account repository over it.
type TestDB struct {
	Pool     *pgxpool.Pool
	Accounts *postgresRepo.AccountRepository
	t        *testing.T
}

var accountSeq atomic.Int64

// NewTestDB connects to DATABASE_URL and applies the migrations. The test is
// skipped when -short is set or no database is configured.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	migrationsPath, err := findMigrations()
	if err != nil {
		t.Fatalf("failed to locate migrations: %v", err)
	}
	if err := postgres.RunMigrations(dbURL, migrationsPath, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: dbURL,
		MaxConns:    20,
		MinConns:    2,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:     pool,
		Accounts: postgresRepo.NewAccountRepository(pool),
		t:        t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// findMigrations walks up from the working directory to the migrations dir.
func findMigrations() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no migrations directory above %s", dir)
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all accounts.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, "TRUNCATE TABLE accounts"); err != nil {
		db.t.Fatalf("failed to truncate accounts: %v", err)
	}
}

// AccountOption adjusts a fixture account before it is inserted.
type AccountOption func(*domain.Account)

// WithMinimumBalance sets the account's own floor.
func WithMinimumBalance(d decimal.Decimal) AccountOption {
	return func(a *domain.Account) { a.MinimumBalance = d }
}

// WithOverdraft allows the account to go limit below its minimum.
func WithOverdraft(limit decimal.Decimal) AccountOption {
	return func(a *domain.Account) {
		a.OverdraftAllowed = true
		a.OverdraftLimit = limit
	}
}

// WithCurrency sets the account currency.
func WithCurrency(c string) AccountOption {
	return func(a *domain.Account) { a.Currency = c }
}

// Frozen marks the account frozen.
func Frozen() AccountOption {
	return func(a *domain.Account) { a.IsFrozen = true }
}

// CreateActiveAccount inserts an ACTIVE account holding balance, with no
// minimum unless an option sets one.
func (db *TestDB) CreateActiveAccount(ctx context.Context, accountType domain.AccountType, balance decimal.Decimal, opts ...AccountOption) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	account := &domain.Account{
		ID:               ulid.Make().String(),
		AccountNumber:    fmt.Sprintf("%s%s%08d", accountType.AccountNumberPrefix(), now.Format("200601"), accountSeq.Add(1)),
		Type:             accountType,
		Name:             "Integration " + string(accountType),
		Currency:         domain.DefaultCurrency,
		Balance:          balance,
		AvailableBalance: balance,
		Status:           domain.AccountStatusActive,
		ActivatedAt:      &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, opt := range opts {
		opt(account)
	}

	if err := db.Accounts.Create(ctx, account); err != nil {
		db.t.Fatalf("failed to create account: %v", err)
	}

	return account
}

// Balance reloads the stored balance of accountNumber.
func (db *TestDB) Balance(ctx context.Context, accountNumber string) decimal.Decimal {
	db.t.Helper()

	account, err := db.Accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		db.t.Fatalf("failed to load %s: %v", accountNumber, err)
	}
	return account.Balance
}

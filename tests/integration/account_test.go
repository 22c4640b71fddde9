package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
	"github.com/telepesa/ledger/tests/testutil"
)

func TestAccountLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	testDB.TruncateAll(ctx)

	accounts, ledger := newUseCases(testDB.Accounts, newRetrier(3))

	opened, err := accounts.OpenAccount(ctx, usecase.OpenAccountInput{
		Name:           "Wanjiku Savings",
		Type:           domain.AccountTypeSavings,
		InitialDeposit: decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	if opened.Status != domain.AccountStatusPending {
		t.Fatalf("expected PENDING, got %s", opened.Status)
	}

	if _, err := ledger.Credit(ctx, usecase.CreditInput{AccountNumber: opened.AccountNumber, Amount: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrAccountNotOperable) {
		t.Fatalf("expected pending account to reject credit, got %v", err)
	}

	activated, err := accounts.ActivateAccount(ctx, opened.AccountNumber)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.ActivatedAt == nil {
		t.Fatalf("expected activated_at to be set")
	}

	if _, err := accounts.FreezeAccount(ctx, opened.AccountNumber); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if _, err := ledger.Debit(ctx, usecase.DebitInput{AccountNumber: opened.AccountNumber, Amount: decimal.NewFromInt(10)}); !errors.Is(err, domain.ErrAccountNotOperable) {
		t.Fatalf("expected frozen account to reject debit, got %v", err)
	}
	if _, err := accounts.UnfreezeAccount(ctx, opened.AccountNumber); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}

	if _, err := accounts.CloseAccount(ctx, opened.AccountNumber); !errors.Is(err, domain.ErrNonZeroBalance) {
		t.Fatalf("expected close with funds to fail, got %v", err)
	}

	stored, err := testDB.Accounts.GetByNumber(ctx, opened.AccountNumber)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected balance 5000, got %s", stored.Balance)
	}
	if stored.Version < 3 {
		t.Fatalf("expected version to advance with each transition, got %d", stored.Version)
	}
}

func TestCloseEmptyAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	testDB.TruncateAll(ctx)

	accounts, ledger := newUseCases(testDB.Accounts, newRetrier(3))
	account := testDB.CreateActiveAccount(ctx, domain.AccountTypeChecking, decimal.NewFromInt(250))

	if _, err := ledger.Debit(ctx, usecase.DebitInput{AccountNumber: account.AccountNumber, Amount: decimal.NewFromInt(250)}); err != nil {
		t.Fatalf("debit to zero: %v", err)
	}

	closed, err := accounts.CloseAccount(ctx, account.AccountNumber)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.AccountStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("expected CLOSED with closed_at, got %s", closed.Status)
	}

	if _, err := ledger.Credit(ctx, usecase.CreditInput{AccountNumber: account.AccountNumber, Amount: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrAccountNotOperable) {
		t.Fatalf("expected closed account to reject credit, got %v", err)
	}
}

func TestDuplicateAccountNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	testDB.TruncateAll(ctx)

	existing := testDB.CreateActiveAccount(ctx, domain.AccountTypeBusiness, decimal.Zero)

	dup := existing.Clone()
	dup.ID = "01JAZZZZZZZZZZZZZZZZZZZZZZ"

	err := testDB.Accounts.Create(ctx, dup)
	if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
		t.Fatalf("expected duplicate account number, got %v", err)
	}
}

func TestGetUnknownAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	testDB.TruncateAll(ctx)

	if _, err := testDB.Accounts.GetByNumber(ctx, "SAV20260100000000"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepesa/ledger/internal/domain"
)

var repoNow = time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC)

var accountColumnNames = []string{
	"id", "account_number", "account_type", "name", "currency", "balance", "available_balance",
	"minimum_balance", "overdraft_allowed", "overdraft_limit", "daily_limit", "monthly_limit", "status", "is_frozen",
	"last_transaction_date", "activated_at", "closed_at", "version", "created_at", "updated_at",
}

func testAccount(id, number string, version int64) *domain.Account {
	return &domain.Account{
		ID:               id,
		AccountNumber:    number,
		Type:             domain.AccountTypeSavings,
		Name:             "Savings",
		Currency:         "KES",
		Balance:          decimal.NewFromInt(1500),
		AvailableBalance: decimal.NewFromInt(1500),
		MinimumBalance:   decimal.NewFromInt(1000),
		Status:           domain.AccountStatusActive,
		Version:          version,
		CreatedAt:        repoNow,
		UpdatedAt:        repoNow,
	}
}

func TestAccountRepositoryGetByNumber(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	activated := repoNow.Add(-time.Hour)
	rows := pgxmock.NewRows(accountColumnNames).AddRow(
		"01HZY0000000000000000000AA", "SAV20260300000001", "SAVINGS", "Savings", "KES", "1500.50", "1500.50",
		"1000", true, "200", "50000", nil, "ACTIVE", false,
		(*time.Time)(nil), &activated, (*time.Time)(nil), int64(3), repoNow, repoNow,
	)
	mock.ExpectQuery("FROM accounts WHERE account_number = \\$1").
		WithArgs("SAV20260300000001").
		WillReturnRows(rows)

	account, err := repo.GetByNumber(context.Background(), "SAV20260300000001")
	require.NoError(t, err)

	assert.Equal(t, "01HZY0000000000000000000AA", account.ID)
	assert.Equal(t, domain.AccountTypeSavings, account.Type)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1500.50")))
	assert.True(t, account.OverdraftAllowed)
	assert.True(t, account.EffectiveFloor().Equal(decimal.NewFromInt(800)))
	require.NotNil(t, account.DailyLimit)
	assert.True(t, account.DailyLimit.Equal(decimal.NewFromInt(50000)))
	assert.Nil(t, account.LastTransactionDate)
	assert.Nil(t, account.MonthlyLimit)
	require.NotNil(t, account.ActivatedAt)
	assert.Equal(t, int64(3), account.Version)

	assertExpectations(t, mock)
}

func TestAccountRepositoryGetNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery("FROM accounts WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	assertExpectations(t, mock)
}

func TestAccountRepositoryCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)
	account := testAccount("01HZY0000000000000000000AA", "SAV20260300000001", 0)

	args := make([]any, len(accountColumnNames))
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[0] = account.ID
	args[1] = account.AccountNumber

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), account))
	assertExpectations(t, mock)
}

func TestAccountRepositoryCreateDuplicateNumber(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: accountNumberConstraint})

	err := repo.Create(context.Background(), testAccount("id", "SAV20260300000001", 0))
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountNumber)
}

func TestAccountRepositorySaveAllOrdersByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	b := testAccount("02-later", "SAV20260300000002", 4)
	a := testAccount("01-earlier", "SAV20260300000001", 7)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs("01-earlier", int64(7), pgxmock.AnyArg(), pgxmock.AnyArg(), "ACTIVE", false,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs("02-later", int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), "ACTIVE", false,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveAll(context.Background(), []*domain.Account{b, a}))
	assert.Equal(t, int64(8), a.Version)
	assert.Equal(t, int64(5), b.Version)

	assertExpectations(t, mock)
}

func TestAccountRepositorySaveAllVersionConflict(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	a := testAccount("01", "SAV20260300000001", 1)
	b := testAccount("02", "SAV20260300000002", 1)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE accounts").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.SaveAll(context.Background(), []*domain.Account{a, b})
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, int64(1), a.Version, "versions move only after commit")
	assert.Equal(t, int64(1), b.Version)

	assertExpectations(t, mock)
}

func TestAccountRepositorySaveAllSerializationFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WillReturnError(&pgconn.PgError{Code: pgErrDeadlock, Message: "deadlock detected"})
	mock.ExpectRollback()

	err := repo.SaveAll(context.Background(), []*domain.Account{testAccount("01", "SAV20260300000001", 0)})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	assertExpectations(t, mock)
}

func TestAccountRepositorySaveAllCommitFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgErrSerializationFailure})

	a := testAccount("01", "SAV20260300000001", 2)
	err := repo.SaveAll(context.Background(), []*domain.Account{a})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, int64(2), a.Version)
}

func TestAccountRepositorySaveAllEmpty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	require.NoError(t, repo.SaveAll(context.Background(), nil))
	assertExpectations(t, mock)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrAccountNotFound},
		{"serialization", &pgconn.PgError{Code: pgErrSerializationFailure}, domain.ErrConcurrentModification},
		{"deadlock", &pgconn.PgError{Code: pgErrDeadlock}, domain.ErrConcurrentModification},
		{"duplicate number", &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: accountNumberConstraint}, domain.ErrDuplicateAccountNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))

	pk := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "accounts_pkey"}
	assert.Equal(t, error(pk), mapError(pk))
}

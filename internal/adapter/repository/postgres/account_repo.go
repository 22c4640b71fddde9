package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
)

const accountColumns = `id, account_number, account_type, name, currency, balance, available_balance,
	minimum_balance, overdraft_allowed, overdraft_limit, daily_limit, monthly_limit, status, is_frozen,
	last_transaction_date, activated_at, closed_at, version, created_at, updated_at`

const createAccountSQL = `INSERT INTO accounts (` + accountColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

const getAccountByIDSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

const getAccountByNumberSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

// updateAccountSQL is a compare-and-swap on version.
const updateAccountSQL = `UPDATE accounts
SET balance = $3,
    available_balance = $4,
    status = $5,
    is_frozen = $6,
    last_transaction_date = $7,
    activated_at = $8,
    closed_at = $9,
    updated_at = $10,
    version = version + 1
WHERE id = $1 AND version = $2`

// AccountRepository implements usecase.AccountRepository on PostgreSQL.
type AccountRepository struct {
	db DB
	tx *TxManager
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{
		db: db,
		tx: NewTxManager(db),
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx, createAccountSQL,
		account.ID,
		account.AccountNumber,
		string(account.Type),
		account.Name,
		account.Currency,
		account.Balance,
		account.AvailableBalance,
		account.MinimumBalance,
		account.OverdraftAllowed,
		account.OverdraftLimit,
		nullDecimal(account.DailyLimit),
		nullDecimal(account.MonthlyLimit),
		string(account.Status),
		account.IsFrozen,
		account.LastTransactionDate,
		account.ActivatedAt,
		account.ClosedAt,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, getAccountByIDSQL, id))
	if err != nil {
		return nil, mapError(err)
	}

	return account, nil
}

// GetByNumber retrieves an account by account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, getAccountByNumberSQL, accountNumber))
	if err != nil {
		return nil, mapError(err)
	}

	return account, nil
}

// SaveAll writes every account in one transaction, in ascending ID order so
// concurrent batches over the same rows acquire row locks in the same order.
// A row whose version moved makes the whole transaction roll back.
func (r *AccountRepository) SaveAll(ctx context.Context, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	ordered := make([]*domain.Account, len(accounts))
	copy(ordered, accounts)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	err := r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		for _, a := range ordered {
			tag, err := tx.Exec(ctx, updateAccountSQL,
				a.ID,
				a.Version,
				a.Balance,
				a.AvailableBalance,
				string(a.Status),
				a.IsFrozen,
				a.LastTransactionDate,
				a.ActivatedAt,
				a.ClosedAt,
				a.UpdatedAt,
			)
			if err != nil {
				return mapError(err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: account %s at version %d",
					domain.ErrConcurrentModification, a.AccountNumber, a.Version)
			}
		}
		return nil
	})
	if err != nil {
		return mapError(err)
	}

	for _, a := range accounts {
		a.Version++
	}

	return nil
}

// Ping checks database connectivity.
func (r *AccountRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a                        domain.Account
		accountType, status      string
		dailyLimit, monthlyLimit decimal.NullDecimal
		lastTx, activated        *time.Time
		closed                   *time.Time
	)

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&accountType,
		&a.Name,
		&a.Currency,
		&a.Balance,
		&a.AvailableBalance,
		&a.MinimumBalance,
		&a.OverdraftAllowed,
		&a.OverdraftLimit,
		&dailyLimit,
		&monthlyLimit,
		&status,
		&a.IsFrozen,
		&lastTx,
		&activated,
		&closed,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.AccountType(accountType)
	a.Status = domain.AccountStatus(status)
	a.DailyLimit = decimalPtr(dailyLimit)
	a.MonthlyLimit = decimalPtr(monthlyLimit)
	a.LastTransactionDate = lastTx
	a.ActivatedAt = activated
	a.ClosedAt = closed

	return &a, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

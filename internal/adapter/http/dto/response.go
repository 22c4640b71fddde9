package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                  string           `json:"id"`
	AccountNumber       string           `json:"account_number"`
	AccountType         string           `json:"account_type"`
	Name                string           `json:"name"`
	Currency            string           `json:"currency"`
	Balance             decimal.Decimal  `json:"balance"`
	AvailableBalance    decimal.Decimal  `json:"available_balance"`
	MinimumBalance      decimal.Decimal  `json:"minimum_balance"`
	OverdraftAllowed    bool             `json:"overdraft_allowed"`
	OverdraftLimit      decimal.Decimal  `json:"overdraft_limit"`
	DailyLimit          *decimal.Decimal `json:"daily_limit,omitempty"`
	MonthlyLimit        *decimal.Decimal `json:"monthly_limit,omitempty"`
	Status              string           `json:"status"`
	IsFrozen            bool             `json:"is_frozen"`
	LastTransactionDate *time.Time       `json:"last_transaction_date,omitempty"`
	ActivatedAt         *time.Time       `json:"activated_at,omitempty"`
	ClosedAt            *time.Time       `json:"closed_at,omitempty"`
	Version             int64            `json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                  a.ID,
		AccountNumber:       a.AccountNumber,
		AccountType:         string(a.Type),
		Name:                a.Name,
		Currency:            a.Currency,
		Balance:             a.Balance,
		AvailableBalance:    a.AvailableBalance,
		MinimumBalance:      a.MinimumBalance,
		OverdraftAllowed:    a.OverdraftAllowed,
		OverdraftLimit:      a.OverdraftLimit,
		DailyLimit:          a.DailyLimit,
		MonthlyLimit:        a.MonthlyLimit,
		Status:              string(a.Status),
		IsFrozen:            a.IsFrozen,
		LastTransactionDate: a.LastTransactionDate,
		ActivatedAt:         a.ActivatedAt,
		ClosedAt:            a.ClosedAt,
		Version:             a.Version,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	Reference         string          `json:"reference"`
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
	State             string          `json:"state"`
	Attempts          int             `json:"attempts"`
	CreatedAt         time.Time       `json:"created_at"`
	CommittedAt       *time.Time      `json:"committed_at,omitempty"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		Reference:         t.Reference,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		Description:       t.Description,
		State:             string(t.State),
		Attempts:          t.Attempts,
		CreatedAt:         t.CreatedAt,
		CommittedAt:       t.CommittedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

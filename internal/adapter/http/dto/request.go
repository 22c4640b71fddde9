package dto

import (
	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	Name             string           `json:"name"`
	AccountType      string           `json:"account_type"`
	Currency         string           `json:"currency"`
	InitialDeposit   decimal.Decimal  `json:"initial_deposit"`
	MinimumBalance   *decimal.Decimal `json:"minimum_balance,omitempty"`
	OverdraftAllowed bool             `json:"overdraft_allowed"`
	OverdraftLimit   decimal.Decimal  `json:"overdraft_limit"`
	DailyLimit       *decimal.Decimal `json:"daily_limit,omitempty"`
	MonthlyLimit     *decimal.Decimal `json:"monthly_limit,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		Name:             r.Name,
		Type:             domain.AccountType(r.AccountType),
		Currency:         r.Currency,
		InitialDeposit:   r.InitialDeposit,
		MinimumBalance:   r.MinimumBalance,
		OverdraftAllowed: r.OverdraftAllowed,
		OverdraftLimit:   r.OverdraftLimit,
		DailyLimit:       r.DailyLimit,
		MonthlyLimit:     r.MonthlyLimit,
	}
}

// MovementRequest is the body of a credit or debit on one account.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToCreditInput converts to a credit for accountNumber.
func (r *MovementRequest) ToCreditInput(accountNumber string) usecase.CreditInput {
	return usecase.CreditInput{
		AccountNumber: accountNumber,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}

// ToDebitInput converts to a debit for accountNumber.
func (r *MovementRequest) ToDebitInput(accountNumber string) usecase.DebitInput {
	return usecase.DebitInput{
		AccountNumber: accountNumber,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}

// TransferRequest represents a request to move money between accounts.
type TransferRequest struct {
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            r.Amount,
		Description:       r.Description,
	}
}

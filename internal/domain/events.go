package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement kinds
const (
	MovementKindCredit   = "credit"
	MovementKindDebit    = "debit"
	MovementKindTransfer = "transfer"
)

// Movement describes a committed balance change for statement and audit
// collaborators. The core never persists it itself.
type Movement struct {
	Reference         string
	Kind              string
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Currency          string
	Description       string
	FromBalanceAfter  *decimal.Decimal
	ToBalanceAfter    *decimal.Decimal
	OccurredAt        time.Time
}

// MovementPayload is the flat wire representation of a Movement.
type MovementPayload struct {
	Reference         string `json:"reference"`
	Kind              string `json:"kind"`
	FromAccountNumber string `json:"from_account_number,omitempty"`
	ToAccountNumber   string `json:"to_account_number,omitempty"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency,omitempty"`
	Description       string `json:"description,omitempty"`
	FromBalanceAfter  string `json:"from_balance_after,omitempty"`
	ToBalanceAfter    string `json:"to_balance_after,omitempty"`
	OccurredAt        string `json:"occurred_at"`
}

// Payload flattens the movement for publishing.
func (m Movement) Payload() MovementPayload {
	p := MovementPayload{
		Reference:         m.Reference,
		Kind:              m.Kind,
		FromAccountNumber: m.FromAccountNumber,
		ToAccountNumber:   m.ToAccountNumber,
		Amount:            m.Amount.String(),
		Currency:          m.Currency,
		Description:       m.Description,
		OccurredAt:        m.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if m.FromBalanceAfter != nil {
		p.FromBalanceAfter = m.FromBalanceAfter.String()
	}
	if m.ToBalanceAfter != nil {
		p.ToBalanceAfter = m.ToBalanceAfter.String()
	}
	return p
}

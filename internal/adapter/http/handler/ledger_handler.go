package handler

import (
	"context"
	"net/http"

	"github.com/telepesa/ledger/internal/adapter/http/dto"
	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

// LedgerService defines the balance operations needed by LedgerHandler.
type LedgerService interface {
	Credit(ctx context.Context, input usecase.CreditInput) (*domain.Account, error)
	Debit(ctx context.Context, input usecase.DebitInput) (*domain.Account, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transfer, error)
}

// LedgerHandler handles credit, debit and transfer requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Credit adds money to an account.
func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.ledgerUC.Credit(r.Context(), req.ToCreditInput(number))
	if err != nil {
		writeDomainError(w, "failed to credit account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Debit removes money from an account.
func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.ledgerUC.Debit(r.Context(), req.ToDebitInput(number))
	if err != nil {
		writeDomainError(w, "failed to debit account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Transfer moves money between two accounts. A failed transfer still
// reports its reference and final state in the error details.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if !decode(w, r, &req) {
		return
	}

	for _, number := range []string{req.FromAccountNumber, req.ToAccountNumber} {
		if !domain.ValidAccountNumber(number) {
			writeError(w, http.StatusBadRequest, "invalid account number", number)
			return
		}
	}

	transfer, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		resp := dto.ErrorResponse{Error: "transfer failed", Message: err.Error()}
		if transfer != nil {
			resp.Details = map[string]string{
				"reference": transfer.Reference,
				"state":     string(transfer.State),
			}
		}
		writeJSON(w, mapDomainError(err), resp)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

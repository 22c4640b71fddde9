package handler

import (
	"context"
	"net/http"

	"github.com/telepesa/ledger/internal/adapter/http/dto"
	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	ActivateAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	FreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	UnfreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	CloseAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// AccountHandler handles account lifecycle requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Open opens a new account in PENDING status.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by account number.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), number)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Activate moves a PENDING account to ACTIVE.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to activate account", h.accountUC.ActivateAccount)
}

// Freeze blocks balance changes on an account.
func (h *AccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to freeze account", h.accountUC.FreezeAccount)
}

// Unfreeze lifts a freeze.
func (h *AccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to unfreeze account", h.accountUC.UnfreezeAccount)
}

// Close closes an account with a zero balance.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to close account", h.accountUC.CloseAccount)
}

func (h *AccountHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	apply func(context.Context, string) (*domain.Account, error),
) {
	number, ok := accountNumberParam(w, r)
	if !ok {
		return
	}

	account, err := apply(r.Context(), number)
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

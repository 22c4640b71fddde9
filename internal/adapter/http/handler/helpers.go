package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telepesa/ledger/internal/adapter/http/dto"
	"github.com/telepesa/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it, attaching the
// shortfall when a debit was refused.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := dto.ErrorResponse{
		Error:   message,
		Message: err.Error(),
	}

	var insufficient *domain.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		resp.Details = map[string]string{
			"account_number": insufficient.AccountNumber,
			"requested":      insufficient.Requested.String(),
			"available":      insufficient.Available.String(),
		}
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidAccountNumber),
		errors.Is(err, domain.ErrInvalidMinimumBalance),
		errors.Is(err, domain.ErrInvalidOverdraftLimit):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrAccountNotOperable),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrBelowMinimumBalance),
		errors.Is(err, domain.ErrNonZeroBalance),
		errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrAccountAlreadyActive),
		errors.Is(err, domain.ErrAccountAlreadyFrozen),
		errors.Is(err, domain.ErrAccountNotFrozen):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// accountNumberParam reads and checks the {number} path parameter.
func accountNumberParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	number := chi.URLParam(r, "number")
	if !domain.ValidAccountNumber(number) {
		writeError(w, http.StatusBadRequest, "invalid account number", number)
		return "", false
	}
	return number, true
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

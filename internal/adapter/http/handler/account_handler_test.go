package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/adapter/http/dto"
	"github.com/telepesa/ledger/internal/domain"
	"github.com/telepesa/ledger/internal/usecase"
)

const testNumber = "SAV20260312345678"

type accountServiceStub struct {
	openFn       func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, number string) (*domain.Account, error)
	transitionFn func(op, number string) (*domain.Account, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return s.getFn(ctx, number)
}

func (s *accountServiceStub) ActivateAccount(_ context.Context, number string) (*domain.Account, error) {
	return s.transitionFn("activate", number)
}

func (s *accountServiceStub) FreezeAccount(_ context.Context, number string) (*domain.Account, error) {
	return s.transitionFn("freeze", number)
}

func (s *accountServiceStub) UnfreezeAccount(_ context.Context, number string) (*domain.Account, error) {
	return s.transitionFn("unfreeze", number)
}

func (s *accountServiceStub) CloseAccount(_ context.Context, number string) (*domain.Account, error) {
	return s.transitionFn("close", number)
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestAccountHandler_Open_Success(t *testing.T) {
	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{
				ID:            "acc-1",
				AccountNumber: testNumber,
				Type:          domain.AccountTypeSavings,
				Status:        domain.AccountStatusPending,
				Balance:       input.InitialDeposit,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{
		Name:           "Amina",
		AccountType:    "SAVINGS",
		Currency:       "KES",
		InitialDeposit: decimal.NewFromInt(1500),
	})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Name != "Amina" || captured.Type != domain.AccountTypeSavings {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccountNumber != testNumber || resp.Status != "PENDING" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Open_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			t.Fatal("OpenAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"below minimum", domain.ErrBelowMinimumBalance, http.StatusUnprocessableEntity},
		{"bad type", domain.ErrInvalidAccountType, http.StatusBadRequest},
		{"bad currency", domain.ErrInvalidCurrency, http.StatusBadRequest},
		{"store failure", errors.New("db error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"name":"x"}`))
			rec := httptest.NewRecorder()

			handler.Open(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error != "failed to open account" {
				t.Fatalf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			if number != testNumber {
				t.Fatalf("expected number %s, got %s", testNumber, number)
			}
			return &domain.Account{ID: "acc-1", AccountNumber: number}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/"+testNumber, nil), "number", testNumber)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/"+testNumber, nil), "number", testNumber)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_InvalidNumber(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			t.Fatal("GetAccount should not be called for an invalid number")
			return nil, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/XYZ", nil), "number", "XYZ")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		call   func(h *AccountHandler) http.HandlerFunc
		op     string
		err    error
		status int
	}{
		{"activate", func(h *AccountHandler) http.HandlerFunc { return h.Activate }, "activate", nil, http.StatusOK},
		{"activate twice", func(h *AccountHandler) http.HandlerFunc { return h.Activate }, "activate", domain.ErrAccountAlreadyActive, http.StatusUnprocessableEntity},
		{"freeze", func(h *AccountHandler) http.HandlerFunc { return h.Freeze }, "freeze", nil, http.StatusOK},
		{"unfreeze not frozen", func(h *AccountHandler) http.HandlerFunc { return h.Unfreeze }, "unfreeze", domain.ErrAccountNotFrozen, http.StatusUnprocessableEntity},
		{"close with balance", func(h *AccountHandler) http.HandlerFunc { return h.Close }, "close", domain.ErrNonZeroBalance, http.StatusUnprocessableEntity},
		{"close conflict", func(h *AccountHandler) http.HandlerFunc { return h.Close }, "close", domain.ErrConcurrentModification, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOp string
			h := NewAccountHandler(&accountServiceStub{
				transitionFn: func(op, number string) (*domain.Account, error) {
					gotOp = op
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.Account{ID: "acc-1", AccountNumber: number}, nil
				},
			})

			req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/accounts/"+testNumber+"/"+tt.op, nil), "number", testNumber)
			rec := httptest.NewRecorder()

			tt.call(h)(rec, req)

			if gotOp != tt.op {
				t.Fatalf("expected %s to be called, got %s", tt.op, gotOp)
			}
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

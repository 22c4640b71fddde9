package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	key    string
	body   map[string]any
}

func newFakeAPI(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{method: r.Method, path: r.URL.Path, key: r.Header.Get("Idempotency-Key")}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &c.body))
		}
		captured = append(captured, c)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, &captured
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTransferCommand(t *testing.T) {
	srv, captured := newFakeAPI(t, http.StatusCreated, `{"reference":"ref-1","state":"COMMITTED"}`)

	out, err := execute(t, "--url", srv.URL, "transfer", "SAV20260312345678", "CHK20260387654321", "250.50",
		"--description", "rent")
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/v1/transfers", req.path)
	assert.NotEmpty(t, req.key, "expected a generated idempotency key")
	assert.Equal(t, "SAV20260312345678", req.body["from_account_number"])
	assert.Equal(t, "250.5", req.body["amount"])
	assert.Equal(t, "rent", req.body["description"])

	assert.Equal(t, "{\n  \"reference\": \"ref-1\",\n  \"state\": \"COMMITTED\"\n}\n", out)
}

func TestCreditDebitCommands(t *testing.T) {
	for _, kind := range []string{"credit", "debit"} {
		t.Run(kind, func(t *testing.T) {
			srv, captured := newFakeAPI(t, http.StatusOK, `{"balance":"100"}`)

			_, err := execute(t, "--url", srv.URL, "--idempotency-key", "fixed", kind, "SAV20260312345678", "100")
			require.NoError(t, err)

			req := (*captured)[0]
			assert.Equal(t, "/api/v1/accounts/SAV20260312345678/"+kind, req.path)
			assert.Equal(t, "fixed", req.key)
		})
	}
}

func TestAccountCommands(t *testing.T) {
	srv, captured := newFakeAPI(t, http.StatusOK, `{"account_number":"SAV20260312345678"}`)

	_, err := execute(t, "--url", srv.URL, "account", "open", "--name", "Amina", "--deposit", "1500")
	require.NoError(t, err)
	_, err = execute(t, "--url", srv.URL, "account", "get", "SAV20260312345678")
	require.NoError(t, err)
	_, err = execute(t, "--url", srv.URL, "account", "freeze", "SAV20260312345678")
	require.NoError(t, err)

	require.Len(t, *captured, 3)
	assert.Equal(t, "/api/v1/accounts", (*captured)[0].path)
	assert.Equal(t, "SAVINGS", (*captured)[0].body["account_type"])
	assert.Equal(t, "1500", (*captured)[0].body["initial_deposit"])

	assert.Equal(t, http.MethodGet, (*captured)[1].method)
	assert.Empty(t, (*captured)[1].key, "reads carry no idempotency key")

	assert.Equal(t, "/api/v1/accounts/SAV20260312345678/freeze", (*captured)[2].path)
}

func TestCommandReportsAPIError(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusUnprocessableEntity,
		`{"error":"failed to debit account","message":"insufficient balance"}`)

	_, err := execute(t, "--url", srv.URL, "debit", "SAV20260312345678", "5000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 422")
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestInvalidAmountRejectedLocally(t *testing.T) {
	srv, captured := newFakeAPI(t, http.StatusOK, `{}`)

	for _, amount := range []string{"abc", "0", "-5"} {
		_, err := execute(t, "--url", srv.URL, "credit", "SAV20260312345678", amount)
		assert.Error(t, err, amount)
	}
	assert.Empty(t, *captured)
}

func TestPrintJSONFallsBackToRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, []byte("not json")))
	assert.Equal(t, "not json", buf.String())
}

func TestAPIErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL+"/", 0).do(context.Background(), http.MethodGet, "/health", nil, "")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "rate limit exceeded (HTTP 429)"), err.Error())
}

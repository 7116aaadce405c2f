package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcortesgranados/refacil-ledger/pkg/api"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage/memory"
)

func newTestRouter() http.Handler {
	service := ledger.NewService(memory.New(), nil, slog.Default())
	return NewRouter(service, slog.Default())
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_DepositWithdrawFlow(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/transactions", &api.NewTransaction{UserId: "u1", Amount: 100, Type: "deposit"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/transactions", &api.NewTransaction{UserId: "u1", Amount: 40, Type: "withdraw"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/users/u1/balance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var balance api.Balance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &balance))
	assert.Equal(t, "u1", balance.UserId)
	assert.Equal(t, int64(60), balance.Balance)

	rr = doJSON(t, router, http.MethodGet, "/users/u1/transactions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []api.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "withdraw", history[0].Type, "most recent transaction comes first")
	assert.Equal(t, "deposit", history[1].Type)
}

func TestRouter_BalanceForUnknownUser(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/users/ghost/balance", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_HistoryLimit(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 3; i++ {
		rr := doJSON(t, router, http.MethodPost, "/transactions", &api.NewTransaction{UserId: "u1", Amount: 10, Type: "deposit"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/users/u1/transactions?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []api.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	assert.Len(t, history, 2)

	rr = doJSON(t, router, http.MethodGet, "/users/u1/transactions?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_InsufficientFunds(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/transactions", &api.NewTransaction{UserId: "u1", Amount: 100, Type: "deposit"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/transactions", &api.NewTransaction{UserId: "u1", Amount: 150, Type: "withdraw"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/users/u1/balance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var balance api.Balance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &balance))
	assert.Equal(t, int64(100), balance.Balance)
}

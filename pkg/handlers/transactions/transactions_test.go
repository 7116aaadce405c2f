package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcortesgranados/refacil-ledger/pkg/api"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage/memory"
)

func newHandler() *TransactionsHandler {
	service := ledger.NewService(memory.New(), nil, slog.Default())
	return NewTransactionsHandler(service)
}

func postTransaction(t *testing.T, handler *TransactionsHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	handler.ProcessTransaction(rr, req)
	return rr
}

func TestProcessTransaction_Success(t *testing.T) {
	handler := newHandler()

	rr := postTransaction(t, handler, &api.NewTransaction{UserId: "u1", Amount: 100, Type: "deposit"})

	assert.Equal(t, http.StatusCreated, rr.Code)

	var tx api.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tx))
	assert.NotEmpty(t, tx.Id)
	assert.Equal(t, "u1", tx.UserId)
	assert.Equal(t, int64(100), tx.Amount)
	assert.Equal(t, "deposit", tx.Type)
	assert.False(t, tx.Timestamp.IsZero())
}

func TestProcessTransaction_InvalidBody(t *testing.T) {
	handler := newHandler()

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	handler.ProcessTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessTransaction_ValidationError(t *testing.T) {
	handler := newHandler()

	rr := postTransaction(t, handler, &api.NewTransaction{UserId: "u1", Amount: -5, Type: "deposit"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "amount must be positive")
}

func TestProcessTransaction_InsufficientFunds(t *testing.T) {
	handler := newHandler()

	rr := postTransaction(t, handler, &api.NewTransaction{UserId: "u1", Amount: 100, Type: "withdraw"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestProcessTransaction_DuplicateID(t *testing.T) {
	handler := newHandler()
	id := "idempotency-key-1"
	body := &api.NewTransaction{UserId: "u1", Amount: 100, Type: "deposit", Id: &id}

	rr := postTransaction(t, handler, body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postTransaction(t, handler, body)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

// failingStore simulates a persistence failure on every operation.
type failingStore struct{}

func (f *failingStore) AppendTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	return nil, errors.New("store down")
}

func (f *failingStore) ListTransactionsByUser(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	return nil, errors.New("store down")
}

func (f *failingStore) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, errors.New("store down")
}

func TestProcessTransaction_StoreFailure(t *testing.T) {
	service := ledger.NewService(&failingStore{}, nil, slog.Default())
	handler := NewTransactionsHandler(service)

	rr := postTransaction(t, handler, &api.NewTransaction{UserId: "u1", Amount: 100, Type: "deposit"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

package balances

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcortesgranados/refacil-ledger/pkg/api"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// BalancesHandler holds the dependencies for balance-related handlers.
type BalancesHandler struct {
	Service *ledger.Service
}

// NewBalancesHandler creates a new BalancesHandler.
func NewBalancesHandler(service *ledger.Service) *BalancesHandler {
	return &BalancesHandler{Service: service}
}

// GetBalanceByUserId handles the logic for retrieving a user's current balance.
func (h *BalancesHandler) GetBalanceByUserId(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	balance, err := h.Service.GetBalance(r.Context(), userID)
	if err != nil {
		var validationErr *ledger.ValidationError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, fmt.Sprintf("No ledger entries for user %s", userID), http.StatusNotFound)
		default:
			slog.ErrorContext(r.Context(), "failed to get balance", slog.Any("error", err))
			http.Error(w, "Failed to retrieve balance", http.StatusInternalServerError)
		}
		return
	}

	resp := api.Balance{UserId: userID, Balance: balance}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcortesgranados/refacil-ledger/pkg/handlers/balances"
	"github.com/mcortesgranados/refacil-ledger/pkg/handlers/transactions"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/middleware"
)

// NewRouter assembles the HTTP surface around the ledger service.
func NewRouter(service *ledger.Service, logger *slog.Logger) chi.Router {
	txHandler := transactions.NewTransactionsHandler(service)
	balanceHandler := balances.NewBalancesHandler(service)

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Post("/transactions", txHandler.ProcessTransaction)
	router.Get("/users/{userId}/transactions", txHandler.ListTransactionsByUserId)
	router.Get("/users/{userId}/balance", balanceHandler.GetBalanceByUserId)

	return router
}

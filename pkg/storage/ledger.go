package storage

import (
	"context"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
)

// LedgerAppender defines the single write operation of the ledger.
// It is the only interface through which balance and transaction state change.
type LedgerAppender interface {
	// AppendTransaction atomically inserts the transaction record and adjusts the
	// user's balance. Either both happen or neither does. A withdrawal that would
	// drive the balance negative fails with ErrInsufficientFunds, and an id that
	// was appended before fails with ErrDuplicateTransaction; in both cases no
	// state changes. Appends for the same user are serialized by the backend.
	AppendTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
}

// LedgerReader defines the read operations of the ledger.
type LedgerReader interface {
	// ListTransactionsByUser retrieves up to limit transactions for a user,
	// ordered by timestamp descending.
	ListTransactionsByUser(ctx context.Context, userID string, limit int32) ([]models.Transaction, error)

	// GetBalance returns the user's current balance. It reflects every append
	// committed before the call. A user with no transactions yields ErrNotFound.
	GetBalance(ctx context.Context, userID string) (int64, error)
}

// LedgerStore combines the appender and reader interfaces. Components should
// depend on the more granular interfaces where possible.
type LedgerStore interface {
	LedgerAppender
	LedgerReader
}

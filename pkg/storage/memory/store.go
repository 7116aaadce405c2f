package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// userLedger holds one user's slice of the ledger. Its mutex serializes
// appends for that user without blocking other users.
type userLedger struct {
	mu           sync.Mutex
	balance      int64
	transactions []models.Transaction
}

// Store is an in-memory implementation of storage.LedgerStore. It is the
// default backend and the harness used by the service tests. Appends for the
// same user are serialized by a per-user mutex; different users proceed
// independently.
type Store struct {
	mu    sync.Mutex
	users map[string]*userLedger
	txIDs map[string]struct{}
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users: make(map[string]*userLedger),
		txIDs: make(map[string]struct{}),
	}
}

// Make sure we conform to the interface
var _ storage.LedgerStore = (*Store)(nil)

// userLedger returns the ledger for a user, creating it on first use.
func (s *Store) userLedger(userID string) *userLedger {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = &userLedger{}
		s.users[userID] = u
	}
	return u
}

// AppendTransaction appends the transaction and adjusts the balance under the
// user's lock. All checks run before any mutation, so a rejected append leaves
// no partial state behind.
func (s *Store) AppendTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	u := s.userLedger(tx.UserId)

	u.mu.Lock()
	defer u.mu.Unlock()

	newBalance := u.balance + tx.SignedAmount()
	if tx.Type == models.WITHDRAW && newBalance < 0 {
		return nil, storage.ErrInsufficientFunds
	}

	s.mu.Lock()
	if _, seen := s.txIDs[tx.Id]; seen {
		s.mu.Unlock()
		return nil, storage.ErrDuplicateTransaction
	}
	s.txIDs[tx.Id] = struct{}{}
	s.mu.Unlock()

	u.transactions = append(u.transactions, *tx)
	u.balance = newBalance

	persisted := *tx
	return &persisted, nil
}

// ListTransactionsByUser returns up to limit transactions for the user,
// ordered by timestamp descending.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	u.mu.Lock()
	// Copy in reverse insertion order so equal timestamps keep newest-first.
	copied := make([]models.Transaction, 0, len(u.transactions))
	for i := len(u.transactions) - 1; i >= 0; i-- {
		copied = append(copied, u.transactions[i])
	}
	u.mu.Unlock()

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Timestamp.After(copied[j].Timestamp)
	})

	if limit > 0 && int(limit) < len(copied) {
		copied = copied[:limit]
	}
	return copied, nil
}

// GetBalance returns the user's maintained balance. A user with no
// transactions yields storage.ErrNotFound.
func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return 0, storage.ErrNotFound
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.transactions) == 0 {
		return 0, storage.ErrNotFound
	}
	return u.balance, nil
}

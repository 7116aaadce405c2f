package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// Store implements storage.LedgerStore using PostgreSQL via lib/pq. It follows
// the maintained-balance strategy: the balance row is locked with
// SELECT ... FOR UPDATE and updated in the same database transaction as the
// ledger insert, so concurrent appends for one user serialize on the row lock
// while other users proceed unblocked.
type Store struct {
	db *sql.DB
}

// New creates a new Store. The caller owns the *sql.DB and its pool settings.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Make sure we conform to the interface
var _ storage.LedgerStore = (*Store)(nil)

// Migrate creates the ledger tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT        NOT NULL,
		amount     BIGINT      NOT NULL CHECK (amount > 0),
		type       TEXT        NOT NULL CHECK (type IN ('deposit', 'withdraw')),
		timestamp  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS transactions_user_id_timestamp_idx
		ON transactions (user_id, timestamp DESC);
	CREATE TABLE IF NOT EXISTS balances (
		user_id TEXT PRIMARY KEY,
		balance BIGINT NOT NULL CHECK (balance >= 0)
	);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run ledger migration: %w", err)
	}
	return nil
}

// AppendTransaction inserts the transaction record and adjusts the user's
// balance in a single database transaction. Any failure before commit rolls
// the whole unit back, so the ledger and the balance never diverge.
func (s *Store) AppendTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	// Ensure the balance row exists so FOR UPDATE has something to lock.
	// ON CONFLICT keeps concurrent first appends for the same user safe.
	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO balances (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		tx.UserId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure balance row: %w", err)
	}

	// Lock the row. Concurrent appends for this user queue up here.
	var balance int64
	err = dbTx.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE user_id = $1 FOR UPDATE`,
		tx.UserId,
	).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance row: %w", err)
	}

	newBalance := balance + tx.SignedAmount()
	if tx.Type == models.WITHDRAW && newBalance < 0 {
		err = storage.ErrInsufficientFunds
		return nil, err
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount, type, timestamp) VALUES ($1, $2, $3, $4, $5)`,
		tx.Id, tx.UserId, tx.Amount, tx.Type, tx.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			err = storage.ErrDuplicateTransaction
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE balances SET balance = $2 WHERE user_id = $1`,
		tx.UserId, newBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tx, nil
}

// ListTransactionsByUser returns up to limit transactions for the user,
// ordered by timestamp descending.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount, type, timestamp FROM transactions
		 WHERE user_id = $1 ORDER BY timestamp DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.Id, &tx.UserId, &tx.Amount, &tx.Type, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, nil
}

// GetBalance returns the user's maintained balance. The balance row is only
// ever created inside AppendTransaction, so a missing row means the user has
// no ledger presence.
func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return balance, nil
}

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mcortesgranados/refacil-ledger/pkg/events"
	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// DefaultHistoryLimit caps history queries when the caller does not supply a limit.
const DefaultHistoryLimit int32 = 20

// Command is a request to apply a deposit or withdrawal to a user's ledger.
// ID and Timestamp are optional; the service resolves them when absent. A
// caller-supplied ID doubles as an idempotency key: replaying it is rejected
// with storage.ErrDuplicateTransaction and never double-applies the balance.
type Command struct {
	UserID    string
	Amount    int64
	Type      models.TransactionType
	ID        string
	Timestamp time.Time
}

// Service is the gatekeeper for all balance-affecting operations. It validates
// commands, orchestrates the store's atomic append, and emits events. It holds
// no persistence logic and no mutable ledger state of its own.
type Service struct {
	Store     storage.LedgerStore
	Publisher events.Publisher
	Logger    *slog.Logger

	// Now and NewID supply timestamps and transaction ids when the caller
	// omits them. Tests override them for determinism.
	Now   func() time.Time
	NewID func() string
}

// NewService creates a Service with the default clock and id generator.
func NewService(store storage.LedgerStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// Process validates the command, appends the transaction atomically and
// returns it as persisted, with resolved id and timestamp. The authoritative
// funds check happens inside the store's atomic unit, so two concurrent
// withdrawals can never both drain the same balance.
func (s *Service) Process(ctx context.Context, cmd Command) (*models.Transaction, error) {
	if cmd.UserID == "" {
		return nil, newValidationError("userId required")
	}
	if cmd.Amount <= 0 {
		return nil, newValidationError("amount must be positive")
	}
	if !cmd.Type.Valid() {
		return nil, newValidationError("invalid type")
	}

	tx := &models.Transaction{
		Id:        cmd.ID,
		UserId:    cmd.UserID,
		Amount:    cmd.Amount,
		Type:      cmd.Type,
		Timestamp: cmd.Timestamp,
	}
	if tx.Id == "" {
		tx.Id = s.NewID()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.Now().UTC()
	}

	persisted, err := s.Store.AppendTransaction(ctx, tx)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	// The transaction is durable at this point. Publication is best-effort:
	// a failed publish is logged, never rolled back.
	evt := events.Event{
		Kind:       events.KindTransactionProcessed,
		Payload:    *persisted,
		OccurredAt: s.Now().UTC(),
	}
	if err := s.Publisher.Publish(ctx, evt); err != nil {
		s.Logger.ErrorContext(ctx, "failed to publish ledger event",
			slog.String("transaction_id", persisted.Id),
			slog.Any("error", err),
		)
	}

	return persisted, nil
}

// GetHistory returns the user's transactions, most recent first. A limit of
// zero or less falls back to DefaultHistoryLimit.
func (s *Service) GetHistory(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	if userID == "" {
		return nil, newValidationError("userId required")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	txs, err := s.Store.ListTransactionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return txs, nil
}

// GetBalance returns the user's current balance. A user with no ledger
// presence surfaces storage.ErrNotFound.
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, newValidationError("userId required")
	}

	balance, err := s.Store.GetBalance(ctx, userID)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return balance, nil
}

// wrapStoreErr passes the sentinel conditions through untouched so callers can
// match them with errors.Is, and wraps everything else as a StoreError.
func wrapStoreErr(err error) error {
	if errors.Is(err, storage.ErrInsufficientFunds) ||
		errors.Is(err, storage.ErrDuplicateTransaction) ||
		errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return &StoreError{Err: err}
}

package events

import (
	"time"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
)

// Kind identifies the type of a ledger event.
type Kind string

const (
	// KindTransactionProcessed is emitted after a transaction has been
	// durably appended to the ledger.
	KindTransactionProcessed Kind = "transaction.processed"
)

// Event describes something that happened to the ledger. The payload is the
// transaction as persisted, after id and timestamp resolution.
type Event struct {
	Kind       Kind               `json:"kind"`
	Payload    models.Transaction `json:"payload"`
	OccurredAt time.Time          `json:"occurred_at"`
}

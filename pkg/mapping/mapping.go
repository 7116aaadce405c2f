package mapping

import (
	"time"

	"github.com/mcortesgranados/refacil-ledger/pkg/api"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/models"
)

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:        tx.Id,
		UserId:    tx.UserId,
		Amount:    tx.Amount,
		Type:      string(tx.Type),
		Timestamp: tx.Timestamp,
	}
}

// ToCommand converts an API NewTransaction into a ledger command. Optional
// fields stay zero-valued so the service resolves them.
func ToCommand(newTx *api.NewTransaction) ledger.Command {
	cmd := ledger.Command{
		UserID: newTx.UserId,
		Amount: newTx.Amount,
		Type:   models.TransactionType(newTx.Type),
	}
	if newTx.Id != nil {
		cmd.ID = *newTx.Id
	}
	if newTx.Timestamp != nil {
		cmd.Timestamp = newTx.Timestamp.In(time.UTC)
	}
	return cmd
}

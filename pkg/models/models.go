package models

import (
	"time"
)

// TransactionType defines the direction of a transaction.
type TransactionType string

const (
	DEPOSIT  TransactionType = "deposit"
	WITHDRAW TransactionType = "withdraw"
)

// Valid reports whether the type is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == DEPOSIT || t == WITHDRAW
}

// Transaction is the internal domain model for a single ledger entry.
// It is immutable once persisted. Amount is always positive; the sign is
// implied by Type. It includes dynamodbav tags for marshalling.
type Transaction struct {
	Id        string          `json:"id" dynamodbav:"id"`
	UserId    string          `json:"user_id" dynamodbav:"user_id"`
	Amount    int64           `json:"amount" dynamodbav:"amount"`
	Type      TransactionType `json:"type" dynamodbav:"type"`
	Timestamp time.Time       `json:"timestamp" dynamodbav:"timestamp"`
}

// SignedAmount returns the amount with the sign implied by the transaction
// type: positive for deposits, negative for withdrawals.
func (t *Transaction) SignedAmount() int64 {
	if t.Type == WITHDRAW {
		return -t.Amount
	}
	return t.Amount
}

// Balance is the internal domain model for a user's maintained balance.
// It is only ever mutated inside the store's atomic append, in the same unit
// as the transaction insert. Version backs the optimistic locking used by the
// DynamoDB store; other backends ignore it.
type Balance struct {
	UserId  string `json:"user_id" dynamodbav:"user_id"`
	Balance int64  `json:"balance" dynamodbav:"balance"`
	Version int64  `json:"version" dynamodbav:"version"`
}

// Package api defines the request and response types of the HTTP surface.
package api

import "time"

// NewTransaction is the request body for processing a deposit or withdrawal.
// Id and Timestamp are optional; a caller-supplied Id acts as an idempotency key.
type NewTransaction struct {
	UserId    string     `json:"user_id"`
	Amount    int64      `json:"amount"`
	Type      string     `json:"type"`
	Id        *string    `json:"id,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Transaction is the API representation of a persisted transaction.
type Transaction struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Balance is the API representation of a user's current balance.
type Balance struct {
	UserId  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

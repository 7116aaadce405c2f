package storage

import "errors"

// ErrInsufficientFunds is returned when a withdrawal would drive a user's balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNotFound is returned when a user has no ledger presence at all.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateTransaction is returned when a transaction with the same id has already
// been appended. The original append is never double-applied.
var ErrDuplicateTransaction = errors.New("duplicate transaction id")

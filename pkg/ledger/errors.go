package ledger

import "fmt"

// ValidationError reports a malformed command. It is returned before the store
// is touched, so no side effects have occurred.
type ValidationError struct {
	msg string
}

func newValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string {
	return e.msg
}

// StoreError wraps a persistence failure that is not one of the sentinel
// conditions (insufficient funds, duplicate id, unknown user). The in-flight
// atomic unit has been rolled back; the transaction is not persisted.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger store: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

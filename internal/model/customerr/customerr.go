// Package customerr holds error types that the transport layer may
// surface to the user as correctable conditions rather than failures.
package customerr

import "fmt"

// NoBalanceError is returned when an operation needs a base balance
// but no 'set' entry has ever been recorded in the ledger.
type NoBalanceError struct {
	Err string
}

func (e *NoBalanceError) Error() string {
	return e.Err
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

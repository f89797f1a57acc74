package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced account id does not resolve
// to a stored detail record.
var ErrNotFound = errors.New("account not found")

// PersistenceError reports a serialization or filesystem failure while
// writing the index or a detail record. Read failures are never surfaced
// this way; corrupt or missing local data is treated as absence.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

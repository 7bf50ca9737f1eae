package mailbox

import (
	"errors"
	"fmt"
)

// Sentinel errors for mailbox operations. The boolean API flattens
// these to false results; they surface directly from Restore and Close
// and on the spans of blocking operations.
var (
	// ErrLockUnavailable indicates the table lock could not be acquired
	// within its bound. Recoverable; retry later.
	ErrLockUnavailable = errors.New("mailbox lock unavailable")

	// ErrInvalidKey indicates an empty key was given.
	ErrInvalidKey = errors.New("invalid mailbox key")

	// ErrNotFound indicates no entry exists for the key.
	ErrNotFound = errors.New("entry not found")

	// ErrTimeout indicates a wait or consume exceeded its allotted time.
	ErrTimeout = errors.New("timed out waiting for entry")

	// ErrClosed indicates the mailbox has been closed.
	ErrClosed = errors.New("mailbox closed")

	// ErrNoStore indicates Restore was called without a configured store.
	ErrNoStore = errors.New("no store configured")
)

// StoreError wraps a failed persistence operation with its context.
type StoreError struct {
	// Op is the operation that failed ("save", "delete", "restore").
	Op string
	// Key is the entry key, if the operation targeted one.
	Key string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s for key %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}

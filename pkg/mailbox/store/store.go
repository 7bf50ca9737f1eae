// Package store provides durable mirrors for pending mailbox entries.
//
// A store keeps a copy of every undelivered entry so a process restart
// can reload values that were sent but never consumed. The mailbox
// treats the mirror as best-effort: store failures are logged and
// counted, never surfaced to senders or consumers.
package store

import (
	"context"
	"errors"
	"time"
)

// Record is one persisted mailbox entry.
type Record struct {
	// Key is the entry key, unique within a mailbox.
	Key string

	// Payload is the codec-encoded value.
	Payload []byte

	// SentAt is the entry creation time.
	SentAt time.Time
}

// Store persists pending entries for one or more mailboxes, addressed
// by mailbox name. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record, overwriting any record with the same key.
	Save(ctx context.Context, box string, rec Record) error

	// Delete removes the record for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, box, key string) error

	// Clear removes every record for the mailbox.
	Clear(ctx context.Context, box string) error

	// LoadAll returns all records for the mailbox. Returns an empty
	// slice (not an error) when the mailbox has none.
	LoadAll(ctx context.Context, box string) ([]Record, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("mailbox store closed")

	// ErrEmptyBox indicates an operation was given an empty mailbox name.
	ErrEmptyBox = errors.New("mailbox name is empty")
)

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite entry store.
// The path should be a file path (e.g., "./mailbox.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			box TEXT NOT NULL,
			key TEXT NOT NULL,
			sent_at TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (box, key)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entries_box
		ON entries(box)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, box string, rec Record) error {
	if box == "" {
		return ErrEmptyBox
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (box, key, sent_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(box, key) DO UPDATE SET
			sent_at = excluded.sent_at,
			payload = excluded.payload
	`, box, rec.Key, rec.SentAt.UTC().Format(time.RFC3339Nano), rec.Payload)

	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, box, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM entries
		WHERE box = ? AND key = ?
	`, box, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context, box string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM entries WHERE box = ?
	`, box)
	if err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// LoadAll implements Store.
func (s *SQLiteStore) LoadAll(ctx context.Context, box string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, sent_at, payload
		FROM entries
		WHERE box = ?
		ORDER BY key
	`, box)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var sentAt string
		if err := rows.Scan(&rec.Key, &sentAt, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		rec.SentAt, _ = time.Parse(time.RFC3339Nano, sentAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return records, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

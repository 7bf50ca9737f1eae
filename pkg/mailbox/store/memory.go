package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-process use.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	boxes  map[string]map[string]Record // box -> key -> record
	closed bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boxes: make(map[string]map[string]Record)}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, box string, rec Record) error {
	if box == "" {
		return ErrEmptyBox
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.boxes[box] == nil {
		m.boxes[box] = make(map[string]Record)
	}

	// Copy the payload to avoid retaining the caller's slice.
	stored := rec
	stored.Payload = make([]byte, len(rec.Payload))
	copy(stored.Payload, rec.Payload)

	m.boxes[box][rec.Key] = stored
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, box, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if entries, ok := m.boxes[box]; ok {
		delete(entries, key)
	}
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, box string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	delete(m.boxes, box)
	return nil
}

// LoadAll implements Store.
func (m *MemoryStore) LoadAll(_ context.Context, box string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	entries := m.boxes[box]
	records := make([]Record, 0, len(entries))
	for _, rec := range entries {
		out := rec
		out.Payload = make([]byte, len(rec.Payload))
		copy(out.Payload, rec.Payload)
		records = append(records, out)
	}

	// Deterministic order for callers and tests.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})

	return records, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.boxes = nil
	return nil
}

// Len returns the number of records held for box.
// Useful for testing.
func (m *MemoryStore) Len(box string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.boxes[box])
}

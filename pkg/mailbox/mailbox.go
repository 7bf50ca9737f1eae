package mailbox

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/mailbox/pkg/mailbox/observability"
	"github.com/randalmurphal/mailbox/pkg/mailbox/store"
	"github.com/randalmurphal/mailbox/pkg/mailbox/tsync"
)

// entry is one pending value.
type entry[T any] struct {
	value  T
	sentAt time.Time // recorded for the mirror and future age-based eviction; no operation reads it
}

// Mailbox is a key-addressed, take-once store for values of T.
// See the package documentation for semantics; the zero value is
// unusable but safe (every operation reports failure).
type Mailbox[T any] struct {
	name string
	set  settings

	mu      *tsync.Mutex
	entries map[string]entry[T]
	wake    chan struct{} // closed and replaced on every send/remove/clear
	closed  bool          // guarded by mu

	st    store.Store
	codec Codec[T]
}

// New creates an in-memory mailbox.
func New[T any](opts ...Option) *Mailbox[T] {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	m := &Mailbox[T]{
		name:    s.name,
		set:     s,
		mu:      tsync.NewMutex(),
		entries: make(map[string]entry[T]),
		wake:    make(chan struct{}),
	}
	observability.LogBoxOpen(s.logger, s.name)
	return m
}

// NewPersistent creates a mailbox that mirrors pending entries to st.
// A nil codec selects JSONCodec[T]. The caller keeps ownership of the
// store; closing the mailbox does not close it. Use WithName to give
// the mailbox a stable identity across restarts, then Restore to
// reload entries that were pending when the previous process exited.
func NewPersistent[T any](st store.Store, codec Codec[T], opts ...Option) *Mailbox[T] {
	m := New[T](opts...)
	if codec == nil {
		codec = JSONCodec[T]{}
	}
	m.st = st
	m.codec = codec
	return m
}

// Name returns the mailbox name used in logs, metrics, and stores.
func (m *Mailbox[T]) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// ready reports whether the mailbox was properly constructed.
// A zero-value or nil mailbox degrades to failing operations.
func (m *Mailbox[T]) ready() bool {
	return m != nil && m.mu != nil && m.entries != nil
}

// wakeWaiters signals every blocked consume/wait that the table
// changed. Must be called with the lock held.
func (m *Mailbox[T]) wakeWaiters() {
	close(m.wake)
	m.wake = make(chan struct{})
}

// Send publishes value under key, replacing any pending entry for the
// same key. A replaced value is dropped without being delivered.
// Returns false if key is empty, the mailbox is closed or unusable, or
// the lock could not be acquired within its bound.
func (m *Mailbox[T]) Send(key string, value T) bool {
	if !m.ready() || key == "" {
		return false
	}

	ctx := context.Background()
	if !m.mu.TryLock(m.set.lockWait) {
		observability.LogLockTimeout(m.set.logger, m.name, "send", key)
		m.set.metrics.RecordLockTimeout(ctx, m.name, "send")
		return false
	}
	if m.closed {
		m.mu.Unlock()
		return false
	}

	_, replaced := m.entries[key]
	e := entry[T]{value: value, sentAt: m.set.clock.Now()}
	m.entries[key] = e
	m.mirrorSave(ctx, key, e)
	m.wakeWaiters()
	m.mu.Unlock()

	observability.LogSend(m.set.logger, m.name, key, replaced)
	m.set.metrics.RecordSend(ctx, m.name, replaced)
	return true
}

// Consume removes and returns the value for key, waiting up to the
// configured consume timeout (default 100ms) for one to arrive.
func (m *Mailbox[T]) Consume(key string) (T, bool) {
	if !m.ready() {
		var zero T
		return zero, false
	}
	return m.ConsumeWithin(key, m.set.consumeTimeout)
}

// ConsumeWithin removes and returns the value for key, waiting up to
// timeout. A zero or negative timeout makes a single attempt. The ok
// result is false when no value arrived in time; that outcome is
// indistinguishable from sustained lock contention.
func (m *Mailbox[T]) ConsumeWithin(key string, timeout time.Duration) (T, bool) {
	var zero T
	if !m.ready() || key == "" {
		return zero, false
	}

	ctx := context.Background()
	var span trace.Span
	if timeout > 0 {
		ctx, span = m.set.spans.StartWaitSpan(ctx, m.name, key, "consume")
	}
	elapsed := observability.TimedOperation()
	deadline := m.set.clock.Now().Add(timeout)

	for {
		if m.mu.TryLock(m.set.lockAttempt) {
			if m.closed {
				m.mu.Unlock()
				m.endSpan(span, ErrClosed)
				return zero, false
			}
			if e, ok := m.entries[key]; ok {
				delete(m.entries, key)
				m.mirrorDelete(ctx, "consume", key)
				m.mu.Unlock()

				waitMs := elapsed()
				observability.LogConsume(m.set.logger, m.name, key, waitMs)
				m.set.metrics.RecordDelivery(ctx, m.name, time.Duration(waitMs*float64(time.Millisecond)))
				m.endSpan(span, nil)
				return e.value, true
			}
			wake := m.wake
			m.mu.Unlock()

			if timeout <= 0 {
				break
			}
			remaining := deadline.Sub(m.set.clock.Now())
			if remaining <= 0 {
				break
			}
			// Sleep until the next send or the deadline, whichever
			// comes first, then recheck.
			t := time.NewTimer(remaining)
			select {
			case <-wake:
				t.Stop()
			case <-t.C:
			}
		} else {
			m.set.metrics.RecordLockTimeout(ctx, m.name, "consume")
			if timeout <= 0 || deadline.Sub(m.set.clock.Now()) <= 0 {
				observability.LogLockTimeout(m.set.logger, m.name, "consume", key)
				break
			}
			m.set.clock.Sleep(m.set.retryPause)
		}
	}

	observability.LogConsumeTimeout(m.set.logger, m.name, key, timeout)
	m.set.metrics.RecordMiss(ctx, m.name, "consume")
	m.endSpan(span, ErrTimeout)
	return zero, false
}

// Has reports whether an entry for key is pending, without consuming
// it. Returns false when the lock is unavailable, indistinguishably
// from an absent key.
func (m *Mailbox[T]) Has(key string) bool {
	if !m.ready() || key == "" {
		return false
	}
	if !m.mu.TryLock(m.set.lockWait) {
		observability.LogLockTimeout(m.set.logger, m.name, "has", key)
		m.set.metrics.RecordLockTimeout(context.Background(), m.name, "has")
		return false
	}
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	_, ok := m.entries[key]
	return ok
}

// Remove deletes the entry for key without delivering its value.
// Returns true if an entry was removed.
func (m *Mailbox[T]) Remove(key string) bool {
	if !m.ready() || key == "" {
		return false
	}

	ctx := context.Background()
	if !m.mu.TryLock(m.set.lockWait) {
		observability.LogLockTimeout(m.set.logger, m.name, "remove", key)
		m.set.metrics.RecordLockTimeout(ctx, m.name, "remove")
		return false
	}

	_, ok := m.entries[key]
	if !ok || m.closed {
		m.mu.Unlock()
		m.set.metrics.RecordMiss(ctx, m.name, "remove")
		return false
	}
	delete(m.entries, key)
	m.mirrorDelete(ctx, "remove", key)
	m.wakeWaiters()
	m.mu.Unlock()

	observability.LogRemove(m.set.logger, m.name, key)
	return true
}

// Clear deletes every pending entry. Cleared values are dropped
// without being delivered.
func (m *Mailbox[T]) Clear() {
	if !m.ready() {
		return
	}

	ctx := context.Background()
	if !m.mu.TryLock(m.set.lockWait) {
		observability.LogLockTimeout(m.set.logger, m.name, "clear", "")
		m.set.metrics.RecordLockTimeout(ctx, m.name, "clear")
		return
	}
	if m.closed {
		m.mu.Unlock()
		return
	}

	cleared := len(m.entries)
	m.entries = make(map[string]entry[T])
	m.mirrorClear(ctx)
	m.wakeWaiters()
	m.mu.Unlock()

	observability.LogClear(m.set.logger, m.name, cleared)
}

// Count returns the number of pending entries. Returns 0 when the lock
// is unavailable, indistinguishably from an empty mailbox.
func (m *Mailbox[T]) Count() int {
	if !m.ready() {
		return 0
	}
	if !m.mu.TryLock(m.set.lockWait) {
		m.set.metrics.RecordLockTimeout(context.Background(), m.name, "count")
		return 0
	}
	defer m.mu.Unlock()
	if m.closed {
		return 0
	}
	return len(m.entries)
}

// Keys returns the pending keys in sorted order, or nil when the lock
// is unavailable.
func (m *Mailbox[T]) Keys() []string {
	if !m.ready() {
		return nil
	}
	if !m.mu.TryLock(m.set.lockWait) {
		m.set.metrics.RecordLockTimeout(context.Background(), m.name, "keys")
		return nil
	}
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Wait blocks until an entry for key is pending, without consuming it.
// A zero timeout reports the current presence immediately; Forever
// blocks with no time limit. Returns false on timeout or when the
// mailbox closes while waiting.
func (m *Mailbox[T]) Wait(key string, timeout time.Duration) bool {
	if !m.ready() || key == "" {
		return false
	}

	ctx := context.Background()
	unbounded := timeout < 0
	var span trace.Span
	if unbounded || timeout > 0 {
		ctx, span = m.set.spans.StartWaitSpan(ctx, m.name, key, "wait")
	}
	deadline := m.set.clock.Now().Add(timeout)

	for {
		if m.mu.TryLock(m.set.lockAttempt) {
			if m.closed {
				m.mu.Unlock()
				m.endSpan(span, ErrClosed)
				return false
			}
			_, ok := m.entries[key]
			wake := m.wake
			m.mu.Unlock()

			if ok {
				m.endSpan(span, nil)
				return true
			}
			if unbounded {
				<-wake
				continue
			}
			if timeout <= 0 {
				m.endSpan(span, ErrNotFound)
				return false
			}
			remaining := deadline.Sub(m.set.clock.Now())
			if remaining <= 0 {
				break
			}
			t := time.NewTimer(remaining)
			select {
			case <-wake:
				t.Stop()
			case <-t.C:
			}
		} else {
			m.set.metrics.RecordLockTimeout(ctx, m.name, "wait")
			if !unbounded && (timeout <= 0 || deadline.Sub(m.set.clock.Now()) <= 0) {
				observability.LogLockTimeout(m.set.logger, m.name, "wait", key)
				break
			}
			m.set.clock.Sleep(m.set.pollInterval)
		}
	}

	m.set.metrics.RecordMiss(ctx, m.name, "wait")
	m.endSpan(span, ErrTimeout)
	return false
}

// Restore reloads mirrored entries from the store. Keys that already
// have a live entry keep it; records that fail to decode are skipped
// and logged. Returns the number of entries restored.
func (m *Mailbox[T]) Restore(ctx context.Context) (int, error) {
	if !m.ready() {
		return 0, ErrClosed
	}
	if m.st == nil {
		return 0, ErrNoStore
	}

	records, err := m.st.LoadAll(ctx, m.name)
	if err != nil {
		return 0, &StoreError{Op: "restore", Err: err}
	}

	if !m.mu.TryLock(m.set.lockWait) {
		return 0, ErrLockUnavailable
	}
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	restored := 0
	for _, rec := range records {
		if _, live := m.entries[rec.Key]; live {
			continue
		}
		value, decodeErr := m.codec.Decode(rec.Payload)
		if decodeErr != nil {
			observability.LogStoreError(m.set.logger, m.name, "restore", rec.Key, decodeErr)
			m.set.metrics.RecordStoreError(ctx, m.name, "restore")
			continue
		}
		m.entries[rec.Key] = entry[T]{value: value, sentAt: rec.SentAt}
		restored++
	}
	if restored > 0 {
		m.wakeWaiters()
	}

	observability.LogRestore(m.set.logger, m.name, restored)
	return restored, nil
}

// Close discards all pending entries without delivering them and makes
// every subsequent operation fail. The persistence mirror is left
// intact so a later Restore can still recover the discarded entries;
// call Clear first for a clean mirror. Close does not close the store.
func (m *Mailbox[T]) Close() error {
	if !m.ready() {
		return nil
	}
	if !m.mu.TryLock(m.set.lockWait) {
		return ErrLockUnavailable
	}
	if m.closed {
		m.mu.Unlock()
		return nil
	}

	discarded := len(m.entries)
	m.entries = make(map[string]entry[T])
	m.closed = true
	m.wakeWaiters()
	m.mu.Unlock()

	observability.LogBoxClose(m.set.logger, m.name, discarded)
	return nil
}

// endSpan completes a blocking-operation span if one was started.
func (m *Mailbox[T]) endSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	m.set.spans.EndSpanWithError(span, err)
}

// mirrorSave persists an entry to the store. Best-effort: failures are
// logged and counted, never surfaced. Must be called with the lock
// held so the mirror stays ordered with the table.
func (m *Mailbox[T]) mirrorSave(ctx context.Context, key string, e entry[T]) {
	if m.st == nil {
		return
	}
	payload, err := m.codec.Encode(e.value)
	if err != nil {
		observability.LogStoreError(m.set.logger, m.name, "encode", key, err)
		m.set.metrics.RecordStoreError(ctx, m.name, "encode")
		return
	}
	rec := store.Record{Key: key, Payload: payload, SentAt: e.sentAt}
	if err := m.st.Save(ctx, m.name, rec); err != nil {
		observability.LogStoreError(m.set.logger, m.name, "save", key, err)
		m.set.metrics.RecordStoreError(ctx, m.name, "save")
	}
}

// mirrorDelete removes an entry from the store. Best-effort.
func (m *Mailbox[T]) mirrorDelete(ctx context.Context, op, key string) {
	if m.st == nil {
		return
	}
	if err := m.st.Delete(ctx, m.name, key); err != nil {
		observability.LogStoreError(m.set.logger, m.name, op, key, err)
		m.set.metrics.RecordStoreError(ctx, m.name, op)
	}
}

// mirrorClear empties the store for this mailbox. Best-effort.
func (m *Mailbox[T]) mirrorClear(ctx context.Context) {
	if m.st == nil {
		return
	}
	if err := m.st.Clear(ctx, m.name); err != nil {
		observability.LogStoreError(m.set.logger, m.name, "clear", "", err)
		m.set.metrics.RecordStoreError(ctx, m.name, "clear")
	}
}

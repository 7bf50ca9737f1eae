/*
Package mailbox provides a key-addressed, take-once store for passing
single values between goroutines.

# Overview

A Mailbox maps string keys to pending values. A sender publishes a
value under a key; a receiver checks for it, blocks until it arrives,
or consumes it. Consuming removes the entry, so each value is delivered
at most once. The mailbox holds at most one pending value per key: a
second Send to the same key replaces the first, and the replaced value
is dropped without ever being delivered.

This is deliberately not a message queue (no buffering per key, no
ordering across keys) and not pub/sub (no fan-out). It replaces ad-hoc
shared globals in producer/consumer setups where only the latest value
per key matters.

# Basic Usage

	box := mailbox.New[string]()

	box.Send("status", "READY")

	if v, ok := box.Consume("status"); ok {
	    fmt.Println(v) // "READY"
	}

Consume waits up to the configured timeout (default 100ms) for a value
to arrive. ConsumeWithin takes an explicit timeout; zero means a single
non-blocking attempt. Wait blocks until a key is present without
consuming it:

	if box.Wait("ready", 5*time.Second) {
	    v, _ := box.ConsumeWithin("ready", 0)
	    // ...
	}

# Integer Signals

The integer-signal flavor is just a Mailbox[int]:

	signals := mailbox.New[int]()
	signals.Send("shutdown", 1)
	code, ok := signals.ConsumeWithin("shutdown", time.Second)

The (value, ok) result shape makes "not found" unambiguous; there is no
reserved sentinel value, so every int (including -1) is a valid signal.

# Error Model

Operations return booleans, not errors. A false result means the value
was not delivered: the key was empty, the entry was absent, the wait
timed out, or the internal lock could not be acquired within its bound.
Lock contention is an expected, recoverable condition and is reported
the same way as an absent key. Callers cannot distinguish "lock busy,
try later" from "key genuinely absent"; this is a documented limitation
of the design, acceptable for a best-effort mailbox. The lock timeout
and miss counters in the observability package are the way to tell the
two apart in aggregate.

A zero-value Mailbox is safe to call: every operation reports failure
without panicking.

# Value Ownership

The mailbox stores values of T directly. It never copies deeply, frees,
or finalizes them. A value that is replaced by a later Send, removed,
cleared, or still pending at Close is simply dropped: it is never
delivered and no cleanup runs. If T carries resources that need
releasing (open files, connections), the application must arrange
cleanup for values that may be dropped; the mailbox cannot do it.

# Waiting

Blocked consumers are woken by the next table mutation rather than
discovering it on a fixed poll tick, so delivery latency is not floored
by a poll interval. Lock acquisition is still bounded: each attempt
waits at most the configured lock-attempt bound, and a contended
attempt is retried after a short pause until the caller's timeout
elapses. Timeouts are the only cancellation mechanism; there is no
external cancel signal for a blocked Wait or Consume.

# Persistence

NewPersistent mirrors pending entries to a store so a restart can
recover values that were sent but never consumed:

	st, err := store.NewSQLiteStore("./mailbox.db")
	if err != nil { ... }
	defer st.Close()

	box := mailbox.NewPersistent[Reading](st, nil, mailbox.WithName("sensors"))
	restored, err := box.Restore(context.Background())

The mirror is best-effort: store failures are logged and counted but
never block delivery. Values are encoded with a Codec (JSON by
default). Give persistent mailboxes a stable name with WithName;
the generated default changes on every construction.

# Observability

Pass a logger, metrics recorder, and span manager via options:

	box := mailbox.New[int](
	    mailbox.WithLogger(slog.Default()),
	    mailbox.WithMetrics(observability.NewMetricsRecorder()),
	    mailbox.WithSpans(observability.NewSpanManager()),
	)

Logs carry box_id and key fields. OTel metrics: mailbox.sends,
mailbox.deliveries, mailbox.wait_ms, mailbox.dropped,
mailbox.lock_timeouts, mailbox.misses, mailbox.store_errors.
Spans cover blocking consumes and waits only.

# Thread Safety

  - Mailbox[T] IS safe for concurrent use by any number of goroutines
  - All table access is serialized through one bounded-wait mutex;
    there is no per-key locking
  - Store implementations are safe for concurrent use

# Subpackages

  - store: durable entry mirrors (memory, SQLite, Redis)
  - config: YAML/JSON tuning files
  - observability: logging, metrics, and tracing helpers
  - tsync: bounded-wait mutex and clock primitives
*/
package mailbox

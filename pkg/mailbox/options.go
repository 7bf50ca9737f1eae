package mailbox

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/mailbox/pkg/mailbox/config"
	"github.com/randalmurphal/mailbox/pkg/mailbox/observability"
	"github.com/randalmurphal/mailbox/pkg/mailbox/tsync"
)

// Default timing bounds. Sized for in-process handoff between
// goroutines; override per deployment via options or a config file.
const (
	// DefaultLockWait bounds lock acquisition for single-shot
	// operations (Send, Has, Remove, Clear, Count).
	DefaultLockWait = 100 * time.Millisecond

	// DefaultLockAttempt bounds each lock acquisition inside a
	// blocking consume or wait loop.
	DefaultLockAttempt = 10 * time.Millisecond

	// DefaultRetryPause is the pause between attempts when the lock
	// itself is contended.
	DefaultRetryPause = time.Millisecond

	// DefaultPollInterval paces Wait's recheck when it cannot make a
	// lock attempt.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultConsumeTimeout is how long Consume waits for a value.
	DefaultConsumeTimeout = 100 * time.Millisecond
)

// Forever makes Wait block with no time limit.
const Forever = time.Duration(-1)

// settings holds resolved construction options.
type settings struct {
	name           string
	lockWait       time.Duration
	lockAttempt    time.Duration
	retryPause     time.Duration
	pollInterval   time.Duration
	consumeTimeout time.Duration
	clock          tsync.Clock
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
}

// defaultSettings returns the default configuration.
func defaultSettings() settings {
	return settings{
		name:           fmt.Sprintf("mbx-%s", uuid.New().String()[:8]),
		lockWait:       DefaultLockWait,
		lockAttempt:    DefaultLockAttempt,
		retryPause:     DefaultRetryPause,
		pollInterval:   DefaultPollInterval,
		consumeTimeout: DefaultConsumeTimeout,
		clock:          tsync.SystemClock{},
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
	}
}

// Option configures a Mailbox at construction.
type Option func(*settings)

// WithName sets the mailbox name used in logs, metric attributes, and
// store addressing. Persistent mailboxes need a stable name; the
// generated default changes on every construction.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLockWait sets the lock acquisition bound for single-shot
// operations. Default: 100ms.
func WithLockWait(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithLockAttempt sets the per-attempt lock bound inside blocking
// loops. Default: 10ms.
func WithLockAttempt(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.lockAttempt = d
		}
	}
}

// WithRetryPause sets the pause between attempts when the lock is
// contended. Default: 1ms.
func WithRetryPause(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.retryPause = d
		}
	}
}

// WithPollInterval sets Wait's recheck pace under lock contention.
// Default: 10ms.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithConsumeTimeout sets how long Consume waits for a value.
// Default: 100ms.
func WithConsumeTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.consumeTimeout = d
		}
	}
}

// WithClock substitutes the time source. Intended for tests.
func WithClock(c tsync.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the structured logger. A nil logger (the default)
// disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpans sets the span manager for blocking operations.
// Default: no-op.
func WithSpans(sm observability.SpanManager) Option {
	return func(s *settings) {
		if sm != nil {
			s.spans = sm
		}
	}
}

// FromConfig builds options from a loaded config file.
//
// Recognized keys: name, lock_wait, lock_attempt, retry_pause,
// poll_interval, consume_timeout. Durations accept Go duration strings
// ("100ms") or bare numbers interpreted as milliseconds.
func FromConfig(cfg config.Config) []Option {
	opts := []Option{
		WithLockWait(cfg.Duration("lock_wait", DefaultLockWait)),
		WithLockAttempt(cfg.Duration("lock_attempt", DefaultLockAttempt)),
		WithRetryPause(cfg.Duration("retry_pause", DefaultRetryPause)),
		WithPollInterval(cfg.Duration("poll_interval", DefaultPollInterval)),
		WithConsumeTimeout(cfg.Duration("consume_timeout", DefaultConsumeTimeout)),
	}
	if cfg.Has("name") {
		opts = append(opts, WithName(cfg.String("name", "")))
	}
	return opts
}

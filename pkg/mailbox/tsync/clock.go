package tsync

import "time"

// Clock abstracts the monotonic time source and delay facility of the
// host scheduler. The mailbox reads it for entry timestamps and for
// pacing its retry loops; tests substitute a deterministic clock.
type Clock interface {
	// Now returns the current time. Implementations must return times
	// that carry a monotonic reading.
	Now() time.Time

	// Sleep suspends the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// SystemClock is the Clock backed by the Go runtime.
type SystemClock struct{}

// Compile-time interface check.
var _ Clock = SystemClock{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep calls time.Sleep.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

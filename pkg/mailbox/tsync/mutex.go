// Package tsync provides the timing and synchronization primitives the
// mailbox core is built on: a mutex with bounded-wait acquisition and a
// pluggable monotonic clock.
//
// sync.Mutex cannot fail to lock; the mailbox error model requires a
// lock attempt that gives up after a deadline and reports failure as an
// ordinary, recoverable condition. Mutex implements that contract with
// a single-slot channel semaphore.
package tsync

import "time"

// Mutex is a mutual-exclusion lock whose acquisition attempt can be
// bounded by a timeout. The zero value is NOT usable; create with
// NewMutex.
type Mutex struct {
	slot chan struct{}
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	m := &Mutex{slot: make(chan struct{}, 1)}
	m.slot <- struct{}{}
	return m
}

// TryLock attempts to acquire the lock, waiting at most timeout.
// A non-positive timeout makes a single non-blocking attempt.
// Returns true if the lock was acquired.
func (m *Mutex) TryLock(timeout time.Duration) bool {
	if m == nil || m.slot == nil {
		return false
	}
	if timeout <= 0 {
		select {
		case <-m.slot:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-m.slot:
		return true
	case <-t.C:
		return false
	}
}

// Unlock releases the lock. Unlocking a mutex that is not held panics,
// matching sync.Mutex behavior.
func (m *Mutex) Unlock() {
	select {
	case m.slot <- struct{}{}:
	default:
		panic("tsync: unlock of unlocked Mutex")
	}
}

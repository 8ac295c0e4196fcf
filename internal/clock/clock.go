// Package clock provides wall-clock time sources and a one-shot deadline
// that is polled from the frame loop instead of firing on its own goroutine.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Real is the system clock.
type Real struct{}

// Now returns the current time with monotonic clock reading.
func (Real) Now() time.Time {
	return time.Now()
}

// Mock provides a controllable time source for testing.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock creates a mock clock starting at start.
func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

// Now returns the current mocked time.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set sets the current time.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the current time forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Deferred is a single pending task due at a wall-clock deadline.
// It runs from Poll on the caller's goroutine, so it needs no locking.
type Deferred struct {
	due     time.Time
	task    func()
	pending bool
}

// Schedule arms the task to run once d has elapsed after now.
// A previously scheduled task is replaced.
func (d *Deferred) Schedule(now time.Time, after time.Duration, task func()) {
	d.due = now.Add(after)
	d.task = task
	d.pending = true
}

// Cancel drops the pending task, if any.
func (d *Deferred) Cancel() {
	d.task = nil
	d.pending = false
}

// Pending reports whether a task is waiting to run.
func (d *Deferred) Pending() bool {
	return d.pending
}

// Due returns the deadline of the pending task.
func (d *Deferred) Due() time.Time {
	return d.due
}

// Poll runs the task if its deadline has been reached. Returns true if it ran.
func (d *Deferred) Poll(now time.Time) bool {
	if !d.pending || now.Before(d.due) {
		return false
	}
	task := d.task
	d.Cancel()
	if task != nil {
		task()
	}
	return true
}

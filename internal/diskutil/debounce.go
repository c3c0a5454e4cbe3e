package diskutil

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into a single trailing invocation.
// Each Call resets the quiet period; once it elapses without another call,
// the wrapped function runs exactly once with the most recent argument.
// A Debouncer owns a single pending timer and is safe for concurrent use.
type Debouncer[T any] struct {
	mu    sync.Mutex
	wait  time.Duration
	fn    func(T)
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer that invokes fn once wait has elapsed
// since the most recent Call.
func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		wait: wait,
		fn:   fn,
	}
}

// Call schedules fn to run with arg after the quiet period. A pending
// invocation from an earlier Call is cancelled, so only the latest
// argument is ever delivered.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		if seq != d.seq {
			// A later Call or Stop superseded this timer while it was firing.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.fn(arg)
	})
}

// Stop cancels the pending invocation, if any. It reports whether an
// invocation was pending.
func (d *Debouncer[T]) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Debounce wraps fn so that calls to the returned function are coalesced:
// fn runs at most once per quiet period, with the argument of the most
// recent call.
func Debounce[T any](wait time.Duration, fn func(T)) func(T) {
	d := NewDebouncer(wait, fn)
	return d.Call
}

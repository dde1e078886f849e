// Package debounce provides a cancellable trailing-edge debouncer with
// generation tracking. Each trigger cancels the previous pending task; a
// task that fires can check whether it is still the latest generation
// before applying its result, so stale network responses are discarded
// instead of overwriting newer state.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single trailing invocation.
// The zero value is not usable; call New.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	gen      uint64
}

// New creates a debouncer with the given trailing interval.
func New(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules fn after the interval, cancelling any pending
// invocation. fn receives the generation it belongs to and runs on the
// timer goroutine. The returned generation identifies this trigger.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() { fn(gen) })
	return gen
}

// Current reports whether gen is still the latest generation. Results of
// stale generations must be dropped, not merged.
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Bump invalidates all outstanding generations without scheduling anything.
// Used when the input becomes structurally invalid and any in-flight result
// must not be applied.
func (d *Debouncer) Bump() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Cancel stops any pending invocation without invalidating results of
// already-running ones.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

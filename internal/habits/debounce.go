package habits

import (
	"context"
	"sync"
	"time"
)

// debouncer holds at most one pending action. Scheduling replaces the
// previous pending action rather than accumulating timers, so within a
// quiet window only the last scheduled action ever runs. A timer-fired
// action runs on a background context; flush passes the caller's.
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func(context.Context)
	gen     uint64
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

// schedule arms the timer with fn, superseding any pending action.
func (d *debouncer) schedule(fn func(context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A superseded timer that lost the Stop race must not fire the
		// replacement action early.
		if gen != d.gen || d.pending == nil {
			d.mu.Unlock()
			return
		}
		fn := d.pending
		d.pending = nil
		d.mu.Unlock()
		fn(context.Background())
	})
}

// cancel drops the pending action, if any.
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}

// flush runs the pending action now instead of waiting out the window.
func (d *debouncer) flush(ctx context.Context) {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.mu.Unlock()

	if fn != nil {
		fn(ctx)
	}
}

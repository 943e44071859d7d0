package habits

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyLastActionRuns(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)

	var first, second atomic.Int32
	d.schedule(func(context.Context) { first.Add(1) })
	d.schedule(func(context.Context) { second.Add(1) })

	time.Sleep(150 * time.Millisecond)

	if first.Load() != 0 {
		t.Error("superseded action must not run")
	}
	if second.Load() != 1 {
		t.Errorf("last action should run exactly once, ran %d times", second.Load())
	}
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var ran atomic.Int32
	d.schedule(func(context.Context) { ran.Add(1) })
	d.cancel()

	time.Sleep(100 * time.Millisecond)
	if ran.Load() != 0 {
		t.Error("cancelled action must not run")
	}
}

func TestDebouncer_FlushRunsNow(t *testing.T) {
	d := newDebouncer(time.Hour)

	var ran atomic.Int32
	d.schedule(func(context.Context) { ran.Add(1) })
	d.flush(context.Background())

	if ran.Load() != 1 {
		t.Fatal("flush should run the pending action synchronously")
	}

	// Flushing again is a no-op; the action is consumed.
	d.flush(context.Background())
	if ran.Load() != 1 {
		t.Error("flushed action must not run twice")
	}
}

func TestDebouncer_FlushPassesCallerContext(t *testing.T) {
	d := newDebouncer(time.Hour)

	type ctxKey struct{}
	var got atomic.Value
	d.schedule(func(ctx context.Context) { got.Store(ctx.Value(ctxKey{})) })

	ctx := context.WithValue(context.Background(), ctxKey{}, "flushed")
	d.flush(ctx)

	if got.Load() != "flushed" {
		t.Error("flush must run the action under the caller's context")
	}
}

func TestDebouncer_FlushWithNothingPending(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	d.flush(context.Background())
	d.cancel()
}

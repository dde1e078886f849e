package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBurstCoalescesToFinalTrigger(t *testing.T) {
	d := New(30 * time.Millisecond)

	var fired int32
	var firedGen atomic.Uint64
	var lastGen uint64
	for i := 0; i < 5; i++ {
		lastGen = d.Trigger(func(gen uint64) {
			atomic.AddInt32(&fired, 1)
			firedGen.Store(gen)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
	if got := firedGen.Load(); got != lastGen {
		t.Errorf("generation %d fired, want the final trigger %d", got, lastGen)
	}
}

func TestStaleGenerationIsDetected(t *testing.T) {
	d := New(time.Millisecond)

	first := d.Trigger(func(uint64) {})
	second := d.Trigger(func(uint64) {})

	if d.Current(first) {
		t.Error("first generation must be stale after a second trigger")
	}
	if !d.Current(second) {
		t.Error("second generation must be current")
	}
}

func TestBumpInvalidatesPendingWork(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired int32
	gen := d.Trigger(func(uint64) { atomic.AddInt32(&fired, 1) })
	d.Bump()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("bumped trigger still fired %d times", got)
	}
	if d.Current(gen) {
		t.Error("bump must invalidate the outstanding generation")
	}
}

func TestCancelStopsWithoutInvalidating(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired int32
	gen := d.Trigger(func(uint64) { atomic.AddInt32(&fired, 1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("cancelled trigger still fired %d times", got)
	}
	// Cancel keeps the generation valid so an already-running task may
	// still apply its result.
	if !d.Current(gen) {
		t.Error("cancel must not invalidate the generation")
	}
}

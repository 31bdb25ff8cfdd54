// internal/engine/timer.go
package engine

import (
	"sync"
	"time"
)

// TimerService owns the single phase-bound timer of one room. Arming
// replaces any previous timer, cancellation is idempotent, and a fire
// that lost the race against Arm/Cancel is discarded by generation
// check, so the callback runs at most once per arming.
type TimerService struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Arm schedules fn to run after d, cancelling any outstanding timer
// first. fn runs on the timer goroutine; callers are expected to hand
// it straight back to the room's serialized queue.
func (t *TimerService) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stale := gen != t.gen
		t.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Cancel stops any pending timer. Safe to call when nothing is armed or
// the timer already fired.
func (t *TimerService) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

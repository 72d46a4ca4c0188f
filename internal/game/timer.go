package game

import (
	"sync"
	"time"
)

// PhaseTimer holds the single outstanding deadline for a room. Arming a new
// deadline always cancels the previous one; a cancelled timer that has
// already fired is detected by its generation and dropped. The callback runs
// on the timer goroutine, so the room re-checks its phase guard under its
// own lock before acting on a fire.
type PhaseTimer struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
	phase Phase
	round int
	ends  time.Time
}

// Arm schedules fire(phase, round) after d, replacing any pending deadline.
// The round rides along so the callback can reject a fire that outlived not
// just its phase but its whole round.
func (t *PhaseTimer) Arm(phase Phase, round int, d time.Duration, fire func(phase Phase, round int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	t.phase = phase
	t.round = round
	t.ends = time.Now().Add(d)
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stale := t.gen != gen
		t.mu.Unlock()
		if stale {
			return
		}
		fire(phase, round)
	})
}

// Cancel drops the pending deadline, if any.
func (t *PhaseTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.phase = ""
	t.round = 0
}

// Pending returns the phase the current deadline is guarding and the time
// remaining until it fires. Phase is empty when nothing is armed.
func (t *PhaseTimer) Pending() (Phase, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil && t.phase == "" {
		return "", 0
	}
	remaining := time.Until(t.ends)
	if remaining < 0 {
		remaining = 0
	}
	return t.phase, remaining
}

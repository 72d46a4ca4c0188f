package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTimerFires(t *testing.T) {
	var timer PhaseTimer
	type fire struct {
		phase Phase
		round int
	}
	fired := make(chan fire, 1)
	timer.Arm(PhaseRecording, 2, 10*time.Millisecond, func(p Phase, round int) { fired <- fire{p, round} })

	select {
	case f := <-fired:
		assert.Equal(t, PhaseRecording, f.phase)
		assert.Equal(t, 2, f.round)
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestPhaseTimerRearmReplacesDeadline(t *testing.T) {
	var timer PhaseTimer
	var recordingFires atomic.Int32
	fired := make(chan Phase, 2)

	timer.Arm(PhaseRecording, 1, 20*time.Millisecond, func(p Phase, _ int) {
		recordingFires.Add(1)
		fired <- p
	})
	timer.Arm(PhaseVoting, 1, 40*time.Millisecond, func(p Phase, _ int) { fired <- p })

	select {
	case p := <-fired:
		assert.Equal(t, PhaseVoting, p, "only the replacement deadline may fire")
	case <-time.After(2 * time.Second):
		t.Fatal("replacement deadline never fired")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recordingFires.Load(), "replaced deadline fired anyway")
}

func TestPhaseTimerCancel(t *testing.T) {
	var timer PhaseTimer
	var fires atomic.Int32
	timer.Arm(PhaseVoting, 1, 15*time.Millisecond, func(Phase, int) { fires.Add(1) })
	timer.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fires.Load())

	phase, _ := timer.Pending()
	assert.Empty(t, phase)
}

func TestPhaseTimerPending(t *testing.T) {
	var timer PhaseTimer

	phase, remaining := timer.Pending()
	assert.Empty(t, phase)
	assert.Zero(t, remaining)

	timer.Arm(PhaseCaptioning, 1, time.Minute, func(Phase, int) {})
	phase, remaining = timer.Pending()
	assert.Equal(t, PhaseCaptioning, phase)
	require.Greater(t, remaining, 50*time.Second)
	require.LessOrEqual(t, remaining, time.Minute)
	timer.Cancel()
}

func TestPhaseTimerCancelIdempotent(t *testing.T) {
	var timer PhaseTimer
	timer.Cancel()
	timer.Cancel()
	phase, _ := timer.Pending()
	assert.Empty(t, phase)
}

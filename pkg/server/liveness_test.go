package server

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLivenessIdleFires(t *testing.T) {
	l := newLiveness(50*time.Millisecond, time.Hour)
	defer l.stop()

	idled := make(chan struct{})
	go l.run(func() { close(idled) }, func() {})

	select {
	case <-idled:
	case <-time.After(2 * time.Second):
		t.Fatal("idle timer never fired")
	}
}

func TestLivenessTouchDefersIdle(t *testing.T) {
	l := newLiveness(150*time.Millisecond, time.Hour)
	defer l.stop()

	idled := make(chan struct{})
	go l.run(func() { close(idled) }, func() {})

	// Keep touching for longer than the idle window; the deadline must keep
	// moving forward.
	for i := 0; i < 6; i++ {
		time.Sleep(50 * time.Millisecond)
		l.touch()
	}
	select {
	case <-idled:
		t.Fatal("idle fired despite activity")
	default:
	}

	// Stop touching; now it must fire.
	select {
	case <-idled:
	case <-time.After(2 * time.Second):
		t.Fatal("idle timer never fired after activity ceased")
	}
}

func TestLivenessHeartbeatOnlyAfterStart(t *testing.T) {
	l := newLiveness(time.Hour, 30*time.Millisecond)
	defer l.stop()

	var beats atomic.Int64
	go l.run(func() {}, func() { beats.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if n := beats.Load(); n != 0 {
		t.Fatalf("heartbeat ticked %d times before start", n)
	}

	l.startHeartbeat()
	deadline := time.After(2 * time.Second)
	for beats.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("heartbeat never ticked after start")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	// Heartbeats are independent of activity: touching must not stop them.
	l.touch()
	before := beats.Load()
	time.Sleep(100 * time.Millisecond)
	if beats.Load() <= before {
		t.Fatal("heartbeat stopped after activity")
	}
}

func TestLivenessStopCancelsBoth(t *testing.T) {
	l := newLiveness(50*time.Millisecond, 20*time.Millisecond)

	var idled, beats atomic.Int64
	done := make(chan struct{})
	go func() {
		l.run(func() { idled.Add(1) }, func() { beats.Add(1) })
		close(done)
	}()
	l.startHeartbeat()
	l.stop()
	l.stop() // idempotent

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit after stop")
	}

	idleAfter, beatsAfter := idled.Load(), beats.Load()
	time.Sleep(120 * time.Millisecond)
	if idled.Load() != idleAfter || beats.Load() != beatsAfter {
		t.Fatal("timers fired after stop")
	}
}

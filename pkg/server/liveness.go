package server

import (
	"sync"
	"time"
)

// liveness owns the two per-connection timers: the idle timer, which fires
// once after a fixed quiet period and causes a disconnect, and the heartbeat
// ticker, which periodically probes the client with PING. The two are
// independent: heartbeats do not reset on activity and never close the
// connection themselves; they exist purely so a well-behaved client has
// something to answer and thereby keep its idle timer fresh.
//
// Each connection has exactly one liveness instance, driven by its own
// supervisor goroutine. Nothing here is shared across connections, so one
// client's timers can never disturb another's.
type liveness struct {
	idleTimeout     time.Duration
	heartbeatPeriod time.Duration

	activity chan struct{} // pulsed on any inbound frame
	hbStart  chan struct{} // closed once, when the session authenticates
	hbOnce   sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

func newLiveness(idleTimeout, heartbeatPeriod time.Duration) *liveness {
	return &liveness{
		idleTimeout:     idleTimeout,
		heartbeatPeriod: heartbeatPeriod,
		activity:        make(chan struct{}, 1),
		hbStart:         make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// touch records inbound activity, pushing the idle deadline forward.
// Non-blocking; coalesces with a pending pulse.
func (l *liveness) touch() {
	select {
	case l.activity <- struct{}{}:
	default:
	}
}

// startHeartbeat begins the periodic PING schedule. Called once, when the
// session reaches Authenticated.
func (l *liveness) startHeartbeat() {
	l.hbOnce.Do(func() { close(l.hbStart) })
}

// stop cancels both timers. Idempotent.
func (l *liveness) stop() {
	l.doneOnce.Do(func() { close(l.done) })
}

// run is the supervisor loop. onIdle is invoked (once) when the idle timer
// expires; onBeat on every heartbeat tick. The idle timer starts counting
// from the moment the connection is accepted, before any LOGIN; the
// heartbeat only after startHeartbeat.
func (l *liveness) run(onIdle, onBeat func()) {
	idle := time.NewTimer(l.idleTimeout)
	defer idle.Stop()

	var hbC <-chan time.Time
	hbStart := l.hbStart
	for {
		select {
		case <-l.done:
			return

		case <-l.activity:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(l.idleTimeout)

		case <-hbStart:
			ticker := time.NewTicker(l.heartbeatPeriod)
			defer ticker.Stop()
			hbC = ticker.C
			hbStart = nil // disarm; the channel is closed and would spin

		case <-hbC:
			onBeat()

		case <-idle.C:
			onIdle()
			return
		}
	}
}

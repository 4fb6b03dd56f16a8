package harness

import (
	"sync"
	"time"
)

// Governor bounds one session's wall-clock time. The countdown is armed at
// construction; at most one termination action ever runs, however the race
// between expiry and Stop resolves.
type Governor struct {
	timer   *time.Timer
	expired chan struct{}
	once    sync.Once
}

// NewGovernor starts a countdown that invokes terminate exactly once if
// ceiling elapses before Stop is called.
func NewGovernor(ceiling time.Duration, terminate func()) *Governor {
	g := &Governor{expired: make(chan struct{})}
	g.timer = time.AfterFunc(ceiling, func() {
		g.once.Do(func() {
			// Expiry is observable before the kill lands, so a waiter woken
			// by the dying process always classifies the session as timed out.
			close(g.expired)
			terminate()
		})
	})
	return g
}

// Expired is closed once the countdown has fired.
func (g *Governor) Expired() <-chan struct{} {
	return g.expired
}

// Stop cancels the countdown. Stopping after expiry, or more than once, is
// a no-op; the termination action never runs after a successful Stop.
func (g *Governor) Stop() {
	g.timer.Stop()
	g.once.Do(func() {})
}

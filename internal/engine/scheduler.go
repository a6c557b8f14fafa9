package engine

import (
	"time"

	"github.com/roach88/rightstroke/internal/arbiter"
)

// WallScheduler is an arbiter.Scheduler backed by real time. Fired timers
// are enqueued, never delivered directly, so the Arbiter only ever runs on
// the engine goroutine.
type WallScheduler struct {
	enqueue func(arbiter.Event) bool
}

// Schedule implements arbiter.Scheduler.
func (s WallScheduler) Schedule(after time.Duration, ev arbiter.TimerFired) func() {
	t := time.AfterFunc(after, func() {
		s.enqueue(ev)
	})
	return func() {
		t.Stop()
	}
}

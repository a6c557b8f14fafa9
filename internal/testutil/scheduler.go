package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/rightstroke/internal/arbiter"
)

// ManualScheduler is an arbiter.Scheduler driven by a ManualClock.
//
// Timers never fire on their own. Advance moves the clock and hands every
// timer that became due to the deliver callback, earliest first; timers
// due at the same instant fire in the order they were scheduled. A timer
// scheduled or cancelled from inside deliver is honoured within the same
// Advance call.
//
// Thread-safety: All methods are safe for concurrent use. deliver is called
// without the internal lock held.
type ManualScheduler struct {
	mu     sync.Mutex
	clock  *ManualClock
	timers []*manualTimer
	order  int
}

type manualTimer struct {
	due   time.Time
	order int
	ev    arbiter.TimerFired
}

// NewManualScheduler creates a scheduler reading time from clock.
func NewManualScheduler(clock *ManualClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

// Schedule implements arbiter.Scheduler.
func (s *ManualScheduler) Schedule(after time.Duration, ev arbiter.TimerFired) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order++
	t := &manualTimer{due: s.clock.Now().Add(after), order: s.order, ev: ev}
	s.timers = append(s.timers, t)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.remove(t)
	}
}

// Advance moves the clock forward by d, firing due timers on the way.
func (s *ManualScheduler) Advance(d time.Duration, deliver func(arbiter.TimerFired)) {
	s.AdvanceTo(s.clock.Now().Add(d), deliver)
}

// AdvanceTo moves the clock to target, firing due timers on the way. The
// clock reads each timer's due time while its event is delivered.
func (s *ManualScheduler) AdvanceTo(target time.Time, deliver func(arbiter.TimerFired)) {
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		s.clock.Set(t.due)
		if deliver != nil {
			deliver(t.ev)
		}
	}
	s.clock.Set(target)
}

// Pending returns the events of timers that have not fired or been
// cancelled, in firing order.
func (s *ManualScheduler) Pending() []arbiter.TimerFired {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortLocked()
	out := make([]arbiter.TimerFired, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t.ev)
	}
	return out
}

func (s *ManualScheduler) popDue(target time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortLocked()
	if len(s.timers) == 0 || s.timers[0].due.After(target) {
		return nil
	}
	t := s.timers[0]
	s.timers = s.timers[1:]
	return t
}

func (s *ManualScheduler) sortLocked() {
	sort.SliceStable(s.timers, func(i, j int) bool {
		a, b := s.timers[i], s.timers[j]
		if !a.due.Equal(b.due) {
			return a.due.Before(b.due)
		}
		return a.order < b.order
	})
}

func (s *ManualScheduler) remove(t *manualTimer) {
	for i, cur := range s.timers {
		if cur == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

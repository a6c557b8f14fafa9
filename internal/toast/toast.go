// Package toast shows a short-lived notice naming the executed action.
package toast

import (
	"sync"
	"time"

	"github.com/roach88/rightstroke/internal/gesture"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 800 * time.Millisecond

// Display is where toasts appear.
type Display interface {
	Show(text string)
	Clear()
}

// Notifier is an arbiter.Toast. At most one toast is visible; a new one
// replaces the current one immediately and restarts the timer.
//
// Thread-safety: Show and Close are safe for concurrent use. Display
// methods are called with the Notifier's lock held and must not call back
// into it.
type Notifier struct {
	mu       sync.Mutex
	display  Display
	duration time.Duration
	gen      uint64
	timer    *time.Timer
	closed   bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithDuration sets the display duration.
func WithDuration(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.duration = d
		}
	}
}

// NewNotifier creates a Notifier showing toasts on d.
func NewNotifier(d Display, opts ...Option) *Notifier {
	n := &Notifier{display: d, duration: DefaultDuration}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show displays the action's label. It never blocks on the display timer.
func (n *Notifier) Show(action gesture.Action) {
	n.ShowText(action.Label())
}

// ShowText displays arbitrary text.
func (n *Notifier) ShowText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	n.gen++
	if n.timer != nil {
		n.timer.Stop()
	}
	n.display.Show(text)

	gen := n.gen
	n.timer = time.AfterFunc(n.duration, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen != gen || n.closed {
			return
		}
		n.timer = nil
		n.display.Clear()
	})
}

// Close clears any visible toast and stops further ones.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
		n.display.Clear()
	}
}

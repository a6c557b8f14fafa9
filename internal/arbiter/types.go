package arbiter

import (
	"context"
	"time"

	"github.com/roach88/rightstroke/internal/gesture"
)

// Mode is the Arbiter's current state.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModePressed
	ModeGesture
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModePressed:
		return "pressed"
	case ModeGesture:
		return "gesture"
	default:
		return "idle"
	}
}

// Verdict is the answer to a ContextMenu event.
type Verdict uint8

const (
	// VerdictNone is returned for every event other than ContextMenu.
	VerdictNone Verdict = iota
	// VerdictShow lets the native menu appear.
	VerdictShow
	// VerdictSuppress cancels the event (prevent default, stop propagation).
	VerdictSuppress
)

// String returns a string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictShow:
		return "shown"
	case VerdictSuppress:
		return "suppressed"
	default:
		return "none"
	}
}

// Outcome classifies a finished interaction cycle.
type Outcome string

const (
	// OutcomeShortClick: released before any movement or long hold.
	OutcomeShortClick Outcome = "short_click"
	// OutcomeGesture: released in gesture mode; recognition was attempted.
	OutcomeGesture Outcome = "gesture"
	// OutcomeDoubleClick: a second press inside the double-click window.
	OutcomeDoubleClick Outcome = "double_click"
	// OutcomeAborted: the cycle was cut short (gestures disabled mid-stroke,
	// or a press arrived while a stale cycle was still open).
	OutcomeAborted Outcome = "aborted"
)

// Cycle summarizes one press-to-release interaction.
type Cycle struct {
	ID          int64
	Outcome     Outcome
	Started     time.Time
	Ended       time.Time
	Points      int
	Recognition *gesture.Recognition
	Suppressed  bool

	// Executed is true when the action was handed to the executor without
	// an immediate error. ExecErr holds an immediate error; Skipped is set
	// when no executor was available.
	Executed bool
	Skipped  bool
	ExecErr  error
}

// Result is what Handle reports for one event.
type Result struct {
	// Verdict is set for ContextMenu events only.
	Verdict Verdict

	// Completed is set when the event ended a cycle.
	Completed *Cycle

	// Aborted is an open cycle the event cut short on its way to
	// Completed, as when a double click lands mid-stroke. It precedes
	// Completed.
	Aborted *Cycle
}

// Config holds the Arbiter's thresholds.
type Config struct {
	// MinDistance is the quantizer leg length in pixels.
	MinDistance float64

	// LongPress is how long the right button must be held, without
	// movement, before the press counts as a gesture.
	LongPress time.Duration

	// DoubleClick is the window in which a second right press is treated
	// as a double right-click and passed through to the native menu.
	DoubleClick time.Duration

	// MenuReset is how long menu suppression lingers after it was applied.
	MenuReset time.Duration

	// MoveTolerance is how far (pixels) the pointer may drift from the
	// press point before the movement counts as drawing.
	MoveTolerance float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinDistance:   gesture.DefaultMinDistance,
		LongPress:     500 * time.Millisecond,
		DoubleClick:   300 * time.Millisecond,
		MenuReset:     100 * time.Millisecond,
		MoveTolerance: 2,
	}
}

// Scheduler arms deferred callbacks. When after has elapsed the scheduler
// must deliver ev back into the Arbiter's Handle, on the Arbiter's
// goroutine. The returned function cancels the timer; calling it after the
// timer fired is harmless.
type Scheduler interface {
	Schedule(after time.Duration, ev TimerFired) (cancel func())
}

// Trail draws the in-progress stroke. Implementations must tolerate Update
// and End without a preceding Begin. Update must not retain points.
type Trail interface {
	Begin()
	Update(points []gesture.Point)
	End()
}

// Toast briefly announces an executed action. Show must not block.
type Toast interface {
	Show(action gesture.Action)
}

// Executor carries out a recognized action. Execute must not block the
// caller for long; asynchronous implementations return nil once the action
// has been dispatched and report failures on their own.
type Executor interface {
	Execute(ctx context.Context, action gesture.Action) error
}

type nopTrail struct{}

func (nopTrail) Begin()                 {}
func (nopTrail) Update([]gesture.Point) {}
func (nopTrail) End()                   {}

type nopToast struct{}

func (nopToast) Show(gesture.Action) {}

// cycleKey is the context key under which Execute receives the cycle ID.
type cycleKey struct{}

// CycleFromContext returns the ID of the cycle whose action is being
// executed, if ctx came from the Arbiter.
func CycleFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(cycleKey{}).(int64)
	return id, ok
}

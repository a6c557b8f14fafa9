package arbiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
)

// Arbiter is the interaction state machine. It owns exactly one
// interaction state at a time and resets it at every cycle boundary.
type Arbiter struct {
	cfg        Config
	recognizer gesture.Recognizer
	sched      Scheduler
	trail      Trail
	toast      Toast
	exec       Executor
	logger     *slog.Logger
	settings   settings.Settings

	st        interactionState
	lastCycle int64

	// Menu flags outlive the cycle that set them; they are consulted by the
	// ContextMenu event that follows the release.
	allowNext     bool
	suppress      bool
	menuToken     int64
	cancelMenuRst func()
}

// interactionState is the cycle-scoped part of the Arbiter. points is
// non-empty exactly while mode is not ModeIdle.
type interactionState struct {
	mode            Mode
	cycle           int64
	points          []gesture.Point
	pressTime       time.Time
	lastRightPress  *time.Time
	cancelLongPress func()
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithTrail sets the trail renderer.
func WithTrail(t Trail) Option {
	return func(a *Arbiter) {
		if t != nil {
			a.trail = t
		}
	}
}

// WithToast sets the toast notifier.
func WithToast(t Toast) Option {
	return func(a *Arbiter) {
		if t != nil {
			a.toast = t
		}
	}
}

// WithExecutor sets the action executor. Without one, recognized actions
// are logged and skipped.
func WithExecutor(e Executor) Option {
	return func(a *Arbiter) {
		a.exec = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSettings sets the initial settings snapshot. The default is
// settings.Defaults(), so the Arbiter is enabled before settings load.
func WithSettings(s settings.Settings) Option {
	return func(a *Arbiter) {
		a.settings = s
	}
}

// New creates an Arbiter. sched must not be nil.
func New(cfg Config, sched Scheduler, opts ...Option) *Arbiter {
	if sched == nil {
		panic("arbiter: nil scheduler")
	}
	a := &Arbiter{
		cfg:        cfg,
		recognizer: gesture.Recognizer{MinDistance: cfg.MinDistance},
		sched:      sched,
		trail:      nopTrail{},
		toast:      nopToast{},
		logger:     slog.Default(),
		settings:   settings.Defaults(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State is a read-only snapshot of the Arbiter.
type State struct {
	Mode          Mode
	Cycle         int64
	Points        int
	AllowNextMenu bool
	SuppressMenu  bool
	Settings      settings.Settings
}

// State returns a snapshot of the current state.
func (a *Arbiter) State() State {
	return State{
		Mode:          a.st.mode,
		Cycle:         a.st.cycle,
		Points:        len(a.st.points),
		AllowNextMenu: a.allowNext,
		SuppressMenu:  a.suppress,
		Settings:      a.settings,
	}
}

// Handle applies one event. ctx is passed to the executor when the event
// completes a gesture.
func (a *Arbiter) Handle(ctx context.Context, ev Event) Result {
	switch e := ev.(type) {
	case Press:
		return a.press(e)
	case Move:
		a.move(e)
	case Release:
		return a.release(ctx, e)
	case ContextMenu:
		return Result{Verdict: a.contextMenu()}
	case TimerFired:
		a.timer(e)
	case SettingsChanged:
		return a.applySettings(e.Settings)
	default:
		a.logger.Warn("unknown arbiter event", "type", fmt.Sprintf("%T", ev))
	}
	return Result{}
}

func (a *Arbiter) press(e Press) Result {
	if e.Button != ButtonRight || !a.settings.GesturesEnabled {
		return Result{}
	}

	// Double-click is checked before anything else so that a second press
	// inside the window never starts a new cycle.
	if last := a.st.lastRightPress; last != nil {
		if elapsed := e.Time.Sub(*last); elapsed >= 0 && elapsed < a.cfg.DoubleClick {
			var stale *Cycle
			if a.st.mode != ModeIdle {
				stale = a.abort(e.Time)
			}
			a.lastCycle++
			a.clearMenuFlags()
			a.allowNext = true
			a.st.lastRightPress = nil
			a.debug("double right-click, next menu allowed", "cycle", a.lastCycle, "elapsed", elapsed)
			return Result{
				Aborted: stale,
				Completed: &Cycle{
					ID:      a.lastCycle,
					Outcome: OutcomeDoubleClick,
					Started: e.Time,
					Ended:   e.Time,
				},
			}
		}
	}

	var res Result
	if a.st.mode != ModeIdle {
		res.Completed = a.abort(e.Time)
	}
	a.clearMenuFlags()

	a.lastCycle++
	a.st = interactionState{
		mode:           ModePressed,
		cycle:          a.lastCycle,
		points:         []gesture.Point{e.Point},
		pressTime:      e.Time,
		lastRightPress: &e.Time,
	}
	a.st.cancelLongPress = a.sched.Schedule(a.cfg.LongPress, TimerFired{Kind: TimerLongPress, Token: a.st.cycle})
	a.debug("gesture cycle started", "cycle", a.st.cycle, "point", e.Point.String())
	return res
}

func (a *Arbiter) move(e Move) {
	if a.st.mode == ModeIdle {
		return
	}
	a.st.points = append(a.st.points, e.Point)

	switch a.st.mode {
	case ModePressed:
		if e.Point.Distance(a.st.points[0]) > a.cfg.MoveTolerance {
			a.enterGestureMode("movement")
		}
	case ModeGesture:
		a.trail.Update(a.st.points)
	}
}

func (a *Arbiter) timer(e TimerFired) {
	switch e.Kind {
	case TimerLongPress:
		if a.st.mode != ModePressed || e.Token != a.st.cycle {
			return
		}
		a.st.cancelLongPress = nil
		a.enterGestureMode("long press")
	case TimerMenuReset:
		if e.Token != a.menuToken || a.cancelMenuRst == nil {
			return
		}
		a.cancelMenuRst = nil
		a.suppress = false
		a.allowNext = false
	}
}

func (a *Arbiter) enterGestureMode(reason string) {
	a.st.mode = ModeGesture
	a.cancelTimer()
	a.trail.Begin()
	a.trail.Update(a.st.points)
	a.debug("gesture mode entered", "cycle", a.st.cycle, "reason", reason)
}

func (a *Arbiter) release(ctx context.Context, e Release) Result {
	// Other buttons going up leave the cycle and its long-press timer alone.
	if a.st.mode == ModeIdle || e.Button != ButtonRight {
		return Result{}
	}
	a.cancelTimer()

	c := &Cycle{
		ID:      a.st.cycle,
		Outcome: OutcomeShortClick,
		Started: a.st.pressTime,
		Ended:   e.Time,
		Points:  len(a.st.points),
	}

	if a.st.mode == ModeGesture {
		c.Outcome = OutcomeGesture
		rec := a.recognizer.Recognize(a.st.points)
		c.Recognition = &rec
		c.Suppressed = true
		a.suppress = true

		if rec.Matched {
			a.debug("gesture recognized", "cycle", c.ID, "pattern", rec.Pattern, "action", string(rec.Action))
			a.execute(ctx, c, rec.Action)
		} else {
			a.debug("gesture not recognized", "cycle", c.ID, "pattern", rec.Pattern)
		}
	}

	a.trail.End()
	a.resetCycle()
	return Result{Completed: c}
}

func (a *Arbiter) execute(ctx context.Context, c *Cycle, action gesture.Action) {
	if a.exec == nil {
		c.Skipped = true
		a.logger.Warn("no action executor, skipping", "cycle", c.ID, "action", string(action))
		return
	}
	if err := a.exec.Execute(context.WithValue(ctx, cycleKey{}, c.ID), action); err != nil {
		c.ExecErr = err
		a.logger.Warn("gesture action failed", "cycle", c.ID, "action", string(action), "error", err)
		return
	}
	c.Executed = true
	a.toast.Show(action)
}

func (a *Arbiter) contextMenu() Verdict {
	switch {
	case !a.settings.GesturesEnabled:
		a.clearMenuFlags()
		return VerdictShow
	case a.allowNext:
		a.allowNext = false
		return VerdictShow
	case a.suppress:
		a.armMenuReset()
		return VerdictSuppress
	case a.st.mode == ModeGesture:
		// The platform asked before the release; the stroke is already a
		// gesture.
		return VerdictSuppress
	default:
		return VerdictShow
	}
}

func (a *Arbiter) armMenuReset() {
	if a.cancelMenuRst != nil {
		return
	}
	a.menuToken++
	a.cancelMenuRst = a.sched.Schedule(a.cfg.MenuReset, TimerFired{Kind: TimerMenuReset, Token: a.menuToken})
}

func (a *Arbiter) applySettings(s settings.Settings) Result {
	prev := a.settings
	a.settings = s
	if prev == s {
		return Result{}
	}
	a.logger.Info("settings changed", "gesturesEnabled", s.GesturesEnabled, "debugLogging", s.DebugLogging)

	if prev.GesturesEnabled && !s.GesturesEnabled {
		a.clearMenuFlags()
		a.st.lastRightPress = nil
		if a.st.mode != ModeIdle {
			return Result{Completed: a.abort(time.Time{})}
		}
	}
	return Result{}
}

// abort ends the open cycle without recognition.
func (a *Arbiter) abort(at time.Time) *Cycle {
	c := &Cycle{
		ID:      a.st.cycle,
		Outcome: OutcomeAborted,
		Started: a.st.pressTime,
		Ended:   at,
		Points:  len(a.st.points),
	}
	a.cancelTimer()
	a.trail.End()
	a.resetCycle()
	a.debug("gesture cycle aborted", "cycle", c.ID)
	return c
}

// resetCycle clears everything cycle-scoped except the last press time,
// which the next press needs for double-click detection.
func (a *Arbiter) resetCycle() {
	a.st = interactionState{lastRightPress: a.st.lastRightPress}
}

func (a *Arbiter) cancelTimer() {
	if a.st.cancelLongPress != nil {
		a.st.cancelLongPress()
		a.st.cancelLongPress = nil
	}
}

func (a *Arbiter) clearMenuFlags() {
	a.allowNext = false
	a.suppress = false
	if a.cancelMenuRst != nil {
		a.cancelMenuRst()
		a.cancelMenuRst = nil
	}
}

// debug logs only when the user turned on debug logging.
func (a *Arbiter) debug(msg string, args ...any) {
	if !a.settings.DebugLogging {
		return
	}
	a.logger.Info(msg, args...)
}

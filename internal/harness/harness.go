package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/testutil"
)

// Harness is the scenario execution engine.
// It drives one Arbiter with a manual clock and scheduler.
type Harness struct {
	arb      *arbiter.Arbiter
	clock    *testutil.ManualClock
	sched    *testutil.ManualScheduler
	exec     *testutil.RecordingExecutor
	settings settings.Settings
	start    time.Time
	result   *Result
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh Arbiter, clock and executor.
//
// Execution flow:
// 1. Apply the scenario's initial settings over the defaults
// 2. Apply each step, recording trace events
// 3. Check the step's expect clause
// 4. Compare executed actions with the scenario's executed list
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewManualClock(testutil.Epoch)
	h := &Harness{
		clock:    clock,
		sched:    testutil.NewManualScheduler(clock),
		exec:     &testutil.RecordingExecutor{},
		settings: settings.Defaults(),
		start:    clock.Now(),
		result:   NewResult(),
	}
	if scenario.Settings != nil {
		h.settings = scenario.Settings.Apply(h.settings)
	}

	h.arb = arbiter.New(arbiter.DefaultConfig(), h.sched,
		arbiter.WithExecutor(h.exec),
		arbiter.WithSettings(h.settings),
		arbiter.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	ctx := context.Background()
	for i, step := range scenario.Steps {
		ev, err := h.apply(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("failed to execute step %d: %w", i, err)
		}
		if step.Expect != nil {
			for _, m := range h.check(i, ev, step.Expect) {
				h.result.AddError(m.Error())
			}
		}
	}

	for _, a := range h.exec.Actions() {
		h.result.Executed = append(h.result.Executed, string(a))
	}
	if scenario.Executed != nil && !slices.Equal(scenario.Executed, h.result.Executed) {
		h.result.AddError(fmt.Sprintf("executed: expected %v, got %v", scenario.Executed, h.result.Executed))
	}

	return h.result, nil
}

// apply hands one step to the Arbiter and returns the step's trace event.
func (h *Harness) apply(ctx context.Context, index int, step Step) (TraceEvent, error) {
	now := h.clock.Now()

	switch {
	case step.Press != nil:
		b, err := ParseButton(step.Press.Button)
		if err != nil {
			return TraceEvent{}, err
		}
		res := h.arb.Handle(ctx, arbiter.Press{Button: b, Point: step.Press.point(), Time: now})
		return h.record(index, pointerEvent(EventPress, b.String(), step.Press), res), nil

	case step.Move != nil:
		res := h.arb.Handle(ctx, arbiter.Move{Point: step.Move.point(), Time: now})
		return h.record(index, pointerEvent(EventMove, "", step.Move), res), nil

	case step.Release != nil:
		b, err := ParseButton(step.Release.Button)
		if err != nil {
			return TraceEvent{}, err
		}
		res := h.arb.Handle(ctx, arbiter.Release{Button: b, Point: step.Release.point(), Time: now})
		return h.record(index, pointerEvent(EventRelease, b.String(), step.Release), res), nil

	case step.ContextMenu:
		res := h.arb.Handle(ctx, arbiter.ContextMenu{Time: now})
		return h.record(index, TraceEvent{Type: EventContextMenu}, res), nil

	case step.Wait != "":
		d, err := time.ParseDuration(step.Wait)
		if err != nil {
			return TraceEvent{}, fmt.Errorf("invalid wait: %w", err)
		}
		h.sched.Advance(d, func(ev arbiter.TimerFired) {
			res := h.arb.Handle(ctx, ev)
			h.record(index, TraceEvent{Type: EventTimer, Timer: ev.Kind.String()}, res)
		})
		return h.record(index, TraceEvent{Type: EventWait}, arbiter.Result{}), nil

	case step.Settings != nil:
		h.settings = step.Settings.Apply(h.settings)
		s := h.settings
		res := h.arb.Handle(ctx, arbiter.SettingsChanged{Settings: s})
		return h.record(index, TraceEvent{Type: EventSettings, Settings: &s}, res), nil
	}

	return TraceEvent{}, fmt.Errorf("step has no input")
}

// record stamps ev with the step, time and resulting state and appends it
// to the trace.
func (h *Harness) record(index int, ev TraceEvent, res arbiter.Result) TraceEvent {
	ev.Step = index
	ev.At = h.clock.Now().Sub(h.start).Milliseconds()
	ev.Mode = h.arb.State().Mode.String()
	if res.Verdict != arbiter.VerdictNone {
		ev.Verdict = res.Verdict.String()
	}
	if res.Completed != nil {
		ev.Cycle = cycleTrace(res.Completed)
	}
	if res.Aborted != nil {
		ev.Aborted = cycleTrace(res.Aborted)
	}
	h.result.Trace = append(h.result.Trace, ev)
	return ev
}

func pointerEvent(kind, button string, p *PointerStep) TraceEvent {
	x, y := p.X, p.Y
	return TraceEvent{Type: kind, Button: button, X: &x, Y: &y}
}

func cycleTrace(c *arbiter.Cycle) *CycleTrace {
	ct := &CycleTrace{
		ID:         c.ID,
		Outcome:    string(c.Outcome),
		Points:     c.Points,
		Suppressed: c.Suppressed,
		Executed:   c.Executed,
	}
	if d := c.Ended.Sub(c.Started); !c.Ended.IsZero() && d > 0 {
		ct.Duration = d.Milliseconds()
	}
	if rec := c.Recognition; rec != nil {
		ct.Directions = rec.Directions.Strings()
		ct.Pattern = rec.Pattern
		if rec.Matched {
			ct.Action = string(rec.Action)
		}
	}
	return ct
}

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
)

// ExecutedAction is one call observed by RecordingExecutor.
type ExecutedAction struct {
	Action gesture.Action
	Cycle  int64
}

// RecordingExecutor records every action it is asked to execute.
//
// If Err is set, Execute records the call and returns Err.
type RecordingExecutor struct {
	Err error

	mu    sync.Mutex
	calls []ExecutedAction
}

// Execute implements arbiter.Executor.
func (r *RecordingExecutor) Execute(ctx context.Context, action gesture.Action) error {
	cycle, _ := arbiter.CycleFromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ExecutedAction{Action: action, Cycle: cycle})
	return r.Err
}

// Calls returns a copy of the recorded calls.
func (r *RecordingExecutor) Calls() []ExecutedAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ExecutedAction(nil), r.calls...)
}

// Actions returns the recorded actions in call order.
func (r *RecordingExecutor) Actions() []gesture.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]gesture.Action, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Action)
	}
	return out
}

// RecordingTrail records trail calls as strings: "begin", "update:N" (N
// points) and "end".
type RecordingTrail struct {
	mu    sync.Mutex
	calls []string
	last  []gesture.Point
}

// Begin implements arbiter.Trail.
func (r *RecordingTrail) Begin() { r.record("begin") }

// Update implements arbiter.Trail. The points are copied.
func (r *RecordingTrail) Update(points []gesture.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("update:%d", len(points)))
	r.last = append(r.last[:0], points...)
}

// End implements arbiter.Trail.
func (r *RecordingTrail) End() { r.record("end") }

func (r *RecordingTrail) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded calls.
func (r *RecordingTrail) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// LastPoints returns the points passed to the most recent Update.
func (r *RecordingTrail) LastPoints() []gesture.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gesture.Point(nil), r.last...)
}

// RecordingToast records every action shown.
type RecordingToast struct {
	mu    sync.Mutex
	shown []gesture.Action
}

// Show implements arbiter.Toast.
func (r *RecordingToast) Show(action gesture.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, action)
}

// Shown returns the recorded actions.
func (r *RecordingToast) Shown() []gesture.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gesture.Action(nil), r.shown...)
}

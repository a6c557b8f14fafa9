package executor

import (
	"context"

	"github.com/roach88/rightstroke/internal/gesture"
)

// TabExecutor executes gesture actions against the active tab of a Window.
type TabExecutor struct {
	Window *Window
}

// NewTabExecutor creates an executor acting on w.
func NewTabExecutor(w *Window) *TabExecutor {
	return &TabExecutor{Window: w}
}

// Execute implements arbiter.Executor.
func (x *TabExecutor) Execute(ctx context.Context, action gesture.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if x.Window == nil {
		return &ActionError{Code: ErrCodeUnavailable, Message: "no window", Action: action}
	}

	w := x.Window
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexLocked(w.active)
	if idx < 0 {
		return newInvalidTab(action)
	}
	tab := w.tabs[idx]

	switch action {
	case gesture.ActionReload:
		tab.Reloads++

	case gesture.ActionClose:
		w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)
		switch {
		case len(w.tabs) == 0:
			w.active = 0
		case idx < len(w.tabs):
			w.active = w.tabs[idx].ID
		default:
			w.active = w.tabs[idx-1].ID
		}

	case gesture.ActionNextTab:
		w.active = w.tabs[(idx+1)%len(w.tabs)].ID

	case gesture.ActionPrevTab:
		w.active = w.tabs[(idx-1+len(w.tabs))%len(w.tabs)].ID

	case gesture.ActionBack:
		if len(tab.History) == 0 {
			return &ActionError{Code: ErrCodeNoHistory, Message: "no history", Action: action, TabID: tab.ID}
		}
		last := len(tab.History) - 1
		tab.URL = tab.History[last]
		tab.History = tab.History[:last]

	default:
		return newUnknownAction(action)
	}
	return nil
}

// Unavailable is the executor used when no action channel exists. Every
// call fails with UNAVAILABLE.
type Unavailable struct{}

// Execute implements arbiter.Executor.
func (Unavailable) Execute(_ context.Context, action gesture.Action) error {
	return &ActionError{Code: ErrCodeUnavailable, Message: "action channel unavailable", Action: action}
}

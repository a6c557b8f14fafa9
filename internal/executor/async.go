package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
)

// Result reports how an asynchronously executed action ended.
type Result struct {
	Action   gesture.Action
	Cycle    int64
	Err      error
	Duration time.Duration
}

// Async runs another executor on its own goroutine.
//
// Execute returns as soon as the action is dispatched. The inner executor
// sees a context that keeps the caller's values but not its cancellation,
// so an action is not cut short because the gesture that triggered it has
// already been handled.
type Async struct {
	inner    arbiter.Executor
	logger   *slog.Logger
	onResult func(Result)
	wg       sync.WaitGroup
}

// AsyncOption configures an Async executor.
type AsyncOption func(*Async)

// WithResultHook sets a callback invoked, on the worker goroutine, after
// every execution.
func WithResultHook(fn func(Result)) AsyncOption {
	return func(a *Async) {
		a.onResult = fn
	}
}

// WithAsyncLogger sets the logger used for failures.
func WithAsyncLogger(l *slog.Logger) AsyncOption {
	return func(a *Async) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAsync wraps inner.
func NewAsync(inner arbiter.Executor, opts ...AsyncOption) *Async {
	a := &Async{inner: inner, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute implements arbiter.Executor.
func (a *Async) Execute(ctx context.Context, action gesture.Action) error {
	ctx = context.WithoutCancel(ctx)
	cycle, _ := arbiter.CycleFromContext(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		start := time.Now()
		err := a.inner.Execute(ctx, action)
		res := Result{Action: action, Cycle: cycle, Err: err, Duration: time.Since(start)}

		if err != nil {
			a.logger.Warn("gesture action failed",
				"action", string(action),
				"cycle", cycle,
				"code", string(CodeOf(err)),
				"error", err,
			)
		}
		if a.onResult != nil {
			a.onResult(res)
		}
	}()
	return nil
}

// Wait blocks until every dispatched action has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

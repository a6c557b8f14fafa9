package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/store"
)

// Engine is the single-writer event loop around one Arbiter.
//
// CRITICAL: All Arbiter calls and store writes happen in the Run goroutine.
// External callers use Enqueue or Submit.
//
// Thread-safety model:
//   - Enqueue(), Submit(), State(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine, once
type Engine struct {
	arb      *arbiter.Arbiter
	cfg      arbiter.Config
	store    *store.Store
	seq      seqCounter
	queue    *itemQueue
	session  string
	provider settings.Provider
	logger   *slog.Logger
	async    *executor.Async

	sessionGen SessionGenerator
	exec       arbiter.Executor
	trail      arbiter.Trail
	toast      arbiter.Toast
	initial    settings.Settings

	onCycle     func(arbiter.Cycle)
	onExecution func(executor.Result)
	onSettings  func(settings.Settings)

	done chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the Arbiter thresholds. Default: arbiter.DefaultConfig().
func WithConfig(cfg arbiter.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithStore records every cycle and execution in s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithSettingsProvider loads settings from p when Run starts and follows
// its change notifications.
func WithSettingsProvider(p settings.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithInitialSettings sets the settings in effect before the provider has
// loaded. Default: settings.Defaults().
func WithInitialSettings(s settings.Settings) Option {
	return func(e *Engine) {
		e.initial = s
	}
}

// WithExecutor sets the action executor. It is always run asynchronously.
// Without one, recognized actions are logged and skipped.
func WithExecutor(x arbiter.Executor) Option {
	return func(e *Engine) {
		e.exec = x
	}
}

// WithTrail sets the trail renderer. It is called on the engine goroutine.
func WithTrail(t arbiter.Trail) Option {
	return func(e *Engine) {
		e.trail = t
	}
}

// WithToast sets the toast notifier. It is called on the engine goroutine.
func WithToast(t arbiter.Toast) Option {
	return func(e *Engine) {
		e.toast = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSessionGenerator sets the session token source. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) {
		e.sessionGen = g
	}
}

// WithCycleHook is called, on the engine goroutine, after every completed cycle.
func WithCycleHook(fn func(arbiter.Cycle)) Option {
	return func(e *Engine) {
		e.onCycle = fn
	}
}

// WithExecutionHook is called, on the engine goroutine, after every action
// execution finishes.
func WithExecutionHook(fn func(executor.Result)) Option {
	return func(e *Engine) {
		e.onExecution = fn
	}
}

// WithSettingsHook is called, on the engine goroutine, whenever the
// Arbiter receives a settings snapshot.
func WithSettingsHook(fn func(settings.Settings)) Option {
	return func(e *Engine) {
		e.onSettings = fn
	}
}

// New creates an Engine. Nothing runs until Run is called.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:        arbiter.DefaultConfig(),
		queue:      newItemQueue(),
		logger:     slog.Default(),
		sessionGen: UUIDv7Generator{},
		initial:    settings.Defaults(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.session = e.sessionGen.Generate()
	e.logger = e.logger.With("session", e.session)

	arbOpts := []arbiter.Option{
		arbiter.WithLogger(e.logger),
		arbiter.WithSettings(e.initial),
		arbiter.WithTrail(e.trail),
		arbiter.WithToast(e.toast),
	}
	if e.exec != nil {
		e.async = executor.NewAsync(e.exec,
			executor.WithAsyncLogger(e.logger),
			executor.WithResultHook(func(r executor.Result) {
				e.queue.Enqueue(item{execution: &r})
			}),
		)
		arbOpts = append(arbOpts, arbiter.WithExecutor(e.async))
	}
	e.arb = arbiter.New(e.cfg, WallScheduler{enqueue: e.Enqueue}, arbOpts...)
	return e
}

// Session returns the engine's session token.
func (e *Engine) Session() string {
	return e.session
}

// QueueLen returns the number of items waiting to be processed.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev arbiter.Event) bool {
	return e.queue.Enqueue(item{event: ev})
}

// Submit enqueues an event and waits for the Arbiter's result. Callers that
// must answer a contextmenu synchronously use Submit.
func (e *Engine) Submit(ctx context.Context, ev arbiter.Event) (arbiter.Result, error) {
	reply := make(chan arbiter.Result, 1)
	if !e.queue.Enqueue(item{event: ev, reply: reply}) {
		return arbiter.Result{}, ErrStopped
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return arbiter.Result{}, ctx.Err()
	case <-e.done:
		return arbiter.Result{}, ErrStopped
	}
}

// State returns a snapshot of the Arbiter, taken on the engine goroutine
// after every previously enqueued item has been processed.
func (e *Engine) State(ctx context.Context) (arbiter.State, error) {
	reply := make(chan arbiter.State, 1)
	if !e.queue.Enqueue(item{state: reply}) {
		return arbiter.State{}, ErrStopped
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return arbiter.State{}, ctx.Err()
	case <-e.done:
		return arbiter.State{}, ErrStopped
	}
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine, once.
//
// ERROR HANDLING: On item processing failure (a store write, say), the
// error is logged with the item's context and processing continues. A
// failure never leaves the Arbiter mid-cycle.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	defer e.drainAsync()

	e.logger.Info("engine starting")

	if e.store != nil {
		seq, err := e.store.MaxSeq(ctx)
		if err != nil {
			e.logger.Warn("could not read last seq, starting at 0", "error", err)
		} else if seq > 0 {
			e.seq.resumeAfter(seq)
		}
	}

	if e.provider != nil {
		cancel := e.provider.Subscribe(func(s settings.Settings) {
			e.Enqueue(arbiter.SettingsChanged{Settings: s})
		})
		defer cancel()
		go e.loadSettings(ctx)
	}

	for {
		it, ok := e.queue.TryDequeue()
		if ok {
			if err := e.process(ctx, it); err != nil {
				logItemError(e.logger, it, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed, which
			// makes this case fire immediately.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the queue, which will cause Run() to return.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) drainAsync() {
	if e.async != nil {
		e.async.Wait()
	}
}

func (e *Engine) loadSettings(ctx context.Context) {
	s, err := e.provider.Load(ctx)
	if err != nil {
		e.logger.Warn("settings unavailable, using defaults", "error", err)
		s = settings.Defaults()
	}
	e.Enqueue(arbiter.SettingsChanged{Settings: s})
}

// process routes an item to the appropriate handler.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ctx context.Context, it item) error {
	switch {
	case it.state != nil:
		it.state <- e.arb.State()
		return nil

	case it.execution != nil:
		return e.processExecution(ctx, *it.execution)

	case it.event != nil:
		res := e.arb.Handle(ctx, it.event)
		if it.reply != nil {
			it.reply <- res
		}
		if sc, ok := it.event.(arbiter.SettingsChanged); ok && e.onSettings != nil {
			e.onSettings(sc.Settings)
		}
		if res.Aborted != nil {
			if err := e.processCycle(ctx, *res.Aborted); err != nil {
				return err
			}
		}
		if res.Completed != nil {
			return e.processCycle(ctx, *res.Completed)
		}
		return nil

	default:
		return fmt.Errorf("empty queue item")
	}
}

// processCycle records a completed cycle.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processCycle(ctx context.Context, c arbiter.Cycle) error {
	seq := e.seq.next()
	if e.onCycle != nil {
		e.onCycle(c)
	}
	if e.store == nil {
		return nil
	}

	rec := CycleRecord(e.session, seq, c)
	if err := e.store.WriteCycle(ctx, rec); err != nil {
		return fmt.Errorf("write cycle %d: %w", c.ID, err)
	}
	e.logger.Debug("cycle written", "cycle", c.ID, "seq", seq, "outcome", string(c.Outcome))
	return nil
}

// processExecution records the outcome of an action.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processExecution(ctx context.Context, r executor.Result) error {
	seq := e.seq.next()
	if e.onExecution != nil {
		e.onExecution(r)
	}
	if e.store == nil {
		return nil
	}

	rec := store.ExecutionRecord{
		Session: e.session,
		CycleID: r.Cycle,
		Seq:     seq,
		Action:  string(r.Action),
		OK:      r.Err == nil,
	}
	if r.Err != nil {
		rec.Code = string(executor.CodeOf(r.Err))
		rec.Message = r.Err.Error()
	}
	if err := e.store.WriteExecution(ctx, rec); err != nil {
		return fmt.Errorf("write execution for cycle %d: %w", r.Cycle, err)
	}
	return nil
}

// CycleRecord converts a completed cycle to its log record.
func CycleRecord(session string, seq int64, c arbiter.Cycle) store.CycleRecord {
	rec := store.CycleRecord{
		Session:    session,
		CycleID:    c.ID,
		Seq:        seq,
		Outcome:    string(c.Outcome),
		StartedAt:  c.Started,
		EndedAt:    c.Ended,
		Points:     c.Points,
		Directions: []string{},
		Suppressed: c.Suppressed,
	}
	if c.Recognition != nil {
		rec.Directions = c.Recognition.Directions.Strings()
		rec.Pattern = c.Recognition.Pattern
		rec.Action = string(c.Recognition.Action)
		rec.Matched = c.Recognition.Matched
	}
	return rec
}

func logItemError(logger *slog.Logger, it item, err error) {
	switch {
	case it.execution != nil:
		logger.Error("execution processing failed",
			"error", err,
			"cycle", it.execution.Cycle,
			"action", string(it.execution.Action),
		)
	case it.event != nil:
		logger.Error("event processing failed",
			"error", err,
			"event", fmt.Sprintf("%T", it.event),
		)
	default:
		logger.Error("item processing failed", "error", err)
	}
}

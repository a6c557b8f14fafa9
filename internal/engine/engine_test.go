package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(dir + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// startEngine runs e until the test ends.
func startEngine(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("engine did not stop")
		}
	})
}

var t0 = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func submit(t *testing.T, e *Engine, ev arbiter.Event) arbiter.Result {
	t.Helper()
	res, err := e.Submit(context.Background(), ev)
	require.NoError(t, err)
	return res
}

func drawClose(t *testing.T, e *Engine) arbiter.Result {
	t.Helper()
	submit(t, e, arbiter.Press{Button: arbiter.ButtonRight, Point: gesture.Point{X: 100, Y: 100}, Time: at(0)})
	submit(t, e, arbiter.Move{Point: gesture.Point{X: 100, Y: 200}, Time: at(50)})
	submit(t, e, arbiter.Move{Point: gesture.Point{X: 200, Y: 200}, Time: at(100)})
	return submit(t, e, arbiter.Release{Button: arbiter.ButtonRight, Point: gesture.Point{X: 200, Y: 200}, Time: at(150)})
}

func TestEngine_New(t *testing.T) {
	engine := New(WithSessionGenerator(NewFixedGenerator("sess")))

	assert.Equal(t, int64(0), engine.seq.last)
	assert.NotNil(t, engine.queue)
	assert.NotNil(t, engine.arb)
	assert.Nil(t, engine.async, "no executor configured")
	assert.Equal(t, "sess", engine.Session())
}

func TestEngine_Enqueue(t *testing.T) {
	engine := New()

	ok := engine.Enqueue(arbiter.ContextMenu{Time: at(0)})
	assert.True(t, ok)
	assert.Equal(t, 1, engine.QueueLen())
}

func TestEngine_Run_ContextCancel(t *testing.T) {
	engine := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.False(t, engine.Enqueue(arbiter.ContextMenu{}), "queue closed after cancel")
}

func TestEngine_Stop(t *testing.T) {
	engine := New()

	done := make(chan error, 1)
	go func() { done <- engine.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	engine.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	_, err := engine.Submit(context.Background(), arbiter.ContextMenu{})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = engine.State(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestEngine_ProcessesQueuedItemsBeforeStop(t *testing.T) {
	var mu sync.Mutex
	var cycles []arbiter.Cycle
	engine := New(WithCycleHook(func(c arbiter.Cycle) {
		mu.Lock()
		defer mu.Unlock()
		cycles = append(cycles, c)
	}))

	engine.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Time: at(0)})
	engine.Enqueue(arbiter.Release{Button: arbiter.ButtonRight, Time: at(10)})
	engine.Stop()

	require.NoError(t, engine.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, cycles, 1)
	assert.Equal(t, arbiter.OutcomeShortClick, cycles[0].Outcome)
}

func TestEngine_Submit_ReturnsVerdict(t *testing.T) {
	engine := New()
	startEngine(t, engine)

	drawClose(t, engine)
	res := submit(t, engine, arbiter.ContextMenu{Time: at(160)})
	assert.Equal(t, arbiter.VerdictSuppress, res.Verdict)
}

func TestEngine_GestureRecordedAndExecuted(t *testing.T) {
	s := setupTestStore(t)
	window := executor.NewWindow("a", "b")

	var mu sync.Mutex
	var results []executor.Result
	engine := New(
		WithStore(s),
		WithSessionGenerator(NewFixedGenerator("sess-1")),
		WithExecutor(executor.NewTabExecutor(window)),
		WithExecutionHook(func(r executor.Result) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, r)
		}),
	)
	startEngine(t, engine)

	res := drawClose(t, engine)
	require.NotNil(t, res.Completed)
	assert.Equal(t, gesture.ActionClose, res.Completed.Recognition.Action)
	assert.True(t, res.Completed.Executed)

	ctx := context.Background()
	require.Eventually(t, func() bool {
		execs, err := s.ReadExecutions(ctx, "sess-1")
		return err == nil && len(execs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cycles, err := s.ReadCycles(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, store.CycleRecord{
		Session:    "sess-1",
		CycleID:    1,
		Seq:        1,
		Outcome:    "gesture",
		StartedAt:  at(0),
		EndedAt:    at(150),
		Points:     3,
		Directions: []string{"down", "right"},
		Pattern:    "down-right",
		Action:     "close",
		Matched:    true,
		Suppressed: true,
	}, cycles[0])

	execs, err := s.ReadExecutions(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), execs[0].CycleID)
	assert.Equal(t, int64(2), execs[0].Seq)
	assert.True(t, execs[0].OK)

	tabs := window.Tabs()
	require.Len(t, tabs, 1, "active tab closed")
	assert.Equal(t, "b", tabs[0].URL)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Cycle)
}

func TestEngine_ExecutionFailureRecorded(t *testing.T) {
	s := setupTestStore(t)
	engine := New(
		WithStore(s),
		WithSessionGenerator(NewFixedGenerator("sess-1")),
		WithExecutor(executor.NewTabExecutor(executor.NewWindow())),
	)
	startEngine(t, engine)

	drawClose(t, engine)

	var execs []store.ExecutionRecord
	require.Eventually(t, func() bool {
		var err error
		execs, err = s.ReadExecutions(context.Background(), "sess-1")
		return err == nil && len(execs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, execs[0].OK)
	assert.Equal(t, "INVALID_TAB", execs[0].Code)

	// The engine keeps working after a failed action.
	st, err := engine.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, arbiter.ModeIdle, st.Mode)
}

func TestEngine_NoExecutorSkips(t *testing.T) {
	engine := New()
	startEngine(t, engine)

	res := drawClose(t, engine)
	require.NotNil(t, res.Completed)
	assert.True(t, res.Completed.Skipped)
}

func TestEngine_LongPressViaWallTimer(t *testing.T) {
	cfg := arbiter.DefaultConfig()
	cfg.LongPress = 20 * time.Millisecond
	engine := New(WithConfig(cfg))
	startEngine(t, engine)

	submit(t, engine, arbiter.Press{Button: arbiter.ButtonRight, Time: at(0)})

	require.Eventually(t, func() bool {
		st, err := engine.State(context.Background())
		return err == nil && st.Mode == arbiter.ModeGesture
	}, 2*time.Second, 5*time.Millisecond)

	res := submit(t, engine, arbiter.Release{Button: arbiter.ButtonRight, Time: at(100)})
	require.NotNil(t, res.Completed)
	assert.Equal(t, arbiter.OutcomeGesture, res.Completed.Outcome)
	assert.True(t, res.Completed.Suppressed)
}

func TestEngine_SettingsProvider(t *testing.T) {
	provider := settings.NewMemory(settings.Settings{GesturesEnabled: false})
	engine := New(WithSettingsProvider(provider))
	startEngine(t, engine)

	require.Eventually(t, func() bool {
		st, err := engine.State(context.Background())
		return err == nil && !st.Settings.GesturesEnabled
	}, 2*time.Second, 5*time.Millisecond)

	res := submit(t, engine, arbiter.Press{Button: arbiter.ButtonRight, Time: at(0)})
	assert.Nil(t, res.Completed)
	st, err := engine.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, arbiter.ModeIdle, st.Mode, "disabled press ignored")

	provider.Set(settings.Defaults())
	require.Eventually(t, func() bool {
		st, err := engine.State(context.Background())
		return err == nil && st.Settings.GesturesEnabled
	}, 2*time.Second, 5*time.Millisecond)
}

type failingProvider struct{}

func (failingProvider) Load(context.Context) (settings.Settings, error) {
	return settings.Settings{}, errors.New("storage unavailable")
}

func (failingProvider) Subscribe(func(settings.Settings)) func() { return func() {} }

func TestEngine_SettingsUnavailableDefaultsEnabled(t *testing.T) {
	var mu sync.Mutex
	var seen []settings.Settings
	engine := New(
		WithInitialSettings(settings.Settings{GesturesEnabled: false}),
		WithSettingsProvider(failingProvider{}),
		WithSettingsHook(func(s settings.Settings) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s)
		}),
	)
	startEngine(t, engine)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 5*time.Millisecond)

	st, err := engine.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), st.Settings)
}

func TestEngine_SeqResumesFromStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := New(WithStore(s), WithSessionGenerator(NewFixedGenerator("one")))
	first.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Time: at(0)})
	first.Enqueue(arbiter.Release{Button: arbiter.ButtonRight, Time: at(10)})
	first.Stop()
	require.NoError(t, first.Run(ctx))

	second := New(WithStore(s), WithSessionGenerator(NewFixedGenerator("two")))
	second.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Time: at(1000)})
	second.Enqueue(arbiter.Release{Button: arbiter.ButtonRight, Time: at(1010)})
	second.Stop()
	require.NoError(t, second.Run(ctx))

	cycles, err := s.ReadCycles(ctx, "")
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, "one", cycles[0].Session)
	assert.Equal(t, int64(1), cycles[0].Seq)
	assert.Equal(t, "two", cycles[1].Session)
	assert.Equal(t, int64(2), cycles[1].Seq)
}

func TestEngine_DoubleClickMidStrokeRecordsBothCycles(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var seen []arbiter.Outcome
	engine := New(
		WithStore(s),
		WithSessionGenerator(NewFixedGenerator("sess-1")),
		WithCycleHook(func(c arbiter.Cycle) { seen = append(seen, c.Outcome) }),
	)
	engine.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Point: gesture.Point{X: 0, Y: 0}, Time: at(0)})
	engine.Enqueue(arbiter.Move{Point: gesture.Point{X: 0, Y: 100}, Time: at(50)})
	engine.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Point: gesture.Point{X: 0, Y: 100}, Time: at(100)})
	engine.Stop()
	require.NoError(t, engine.Run(ctx))

	assert.Equal(t, []arbiter.Outcome{arbiter.OutcomeAborted, arbiter.OutcomeDoubleClick}, seen)

	cycles, err := s.ReadCycles(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, int64(1), cycles[0].CycleID)
	assert.Equal(t, "aborted", cycles[0].Outcome)
	assert.Equal(t, int64(1), cycles[0].Seq)
	assert.Equal(t, int64(2), cycles[1].CycleID)
	assert.Equal(t, "double_click", cycles[1].Outcome)
	assert.Equal(t, int64(2), cycles[1].Seq)
}

func TestCycleRecord_ShortClick(t *testing.T) {
	rec := CycleRecord("s", 4, arbiter.Cycle{
		ID:      2,
		Outcome: arbiter.OutcomeShortClick,
		Started: at(0),
		Ended:   at(20),
		Points:  1,
	})

	assert.Equal(t, store.CycleRecord{
		Session:    "s",
		CycleID:    2,
		Seq:        4,
		Outcome:    "short_click",
		StartedAt:  at(0),
		EndedAt:    at(20),
		Points:     1,
		Directions: []string{},
	}, rec)
}

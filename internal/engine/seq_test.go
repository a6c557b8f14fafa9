package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/store"
)

func TestSeqCounter_Next(t *testing.T) {
	var c seqCounter
	assert.Equal(t, int64(1), c.next())
	assert.Equal(t, int64(2), c.next())
	assert.Equal(t, int64(2), c.last)
}

func TestSeqCounter_ResumeAfter(t *testing.T) {
	testCases := []struct {
		name   string
		before int64
		resume int64
		want   int64
	}{
		{name: "empty log", before: 0, resume: 0, want: 1},
		{name: "moves past log", before: 0, resume: 41, want: 42},
		{name: "never backwards", before: 10, resume: 3, want: 11},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := seqCounter{last: tc.before}
			c.resumeAfter(tc.resume)
			assert.Equal(t, tc.want, c.next())
		})
	}
}

func TestEngine_SeqResumesAfterLoggedExecution(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// The newest seq in the log belongs to an execution, not a cycle.
	require.NoError(t, s.WriteCycle(ctx, store.CycleRecord{
		Session: "earlier", CycleID: 1, Seq: 3, Outcome: "gesture",
		Directions: []string{"left"}, Pattern: "left", Action: "back", Matched: true, Suppressed: true,
	}))
	require.NoError(t, s.WriteExecution(ctx, store.ExecutionRecord{
		Session: "earlier", CycleID: 1, Seq: 7, Action: "back", OK: true,
	}))

	engine := New(WithStore(s), WithSessionGenerator(NewFixedGenerator("later")))
	engine.Enqueue(arbiter.Press{Button: arbiter.ButtonRight, Time: at(0)})
	engine.Enqueue(arbiter.Release{Button: arbiter.ButtonRight, Time: at(10)})
	engine.Stop()
	require.NoError(t, engine.Run(ctx))

	cycles, err := s.ReadCycles(ctx, "later")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, int64(8), cycles[0].Seq)
}

// drawCloseFrom draws down-right starting at ms, far enough from any
// earlier press to avoid a double click.
func drawCloseFrom(t *testing.T, e *Engine, ms int) {
	t.Helper()
	submit(t, e, arbiter.Press{Button: arbiter.ButtonRight, Point: gesture.Point{X: 100, Y: 100}, Time: at(ms)})
	submit(t, e, arbiter.Move{Point: gesture.Point{X: 100, Y: 200}, Time: at(ms + 50)})
	submit(t, e, arbiter.Move{Point: gesture.Point{X: 200, Y: 200}, Time: at(ms + 100)})
	submit(t, e, arbiter.Release{Button: arbiter.ButtonRight, Point: gesture.Point{X: 200, Y: 200}, Time: at(ms + 150)})
}

func TestEngine_CyclesAndExecutionsInterleave(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	engine := New(
		WithStore(s),
		WithSessionGenerator(NewFixedGenerator("sess-1")),
		WithExecutor(executor.NewTabExecutor(executor.NewWindow("a", "b", "c"))),
	)
	startEngine(t, engine)

	executions := func(n int) func() bool {
		return func() bool {
			execs, err := s.ReadExecutions(ctx, "sess-1")
			return err == nil && len(execs) == n
		}
	}

	drawCloseFrom(t, engine, 0)
	require.Eventually(t, executions(1), 2*time.Second, 10*time.Millisecond)
	drawCloseFrom(t, engine, 1000)
	require.Eventually(t, executions(2), 2*time.Second, 10*time.Millisecond)

	cycles, err := s.ReadCycles(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	execs, err := s.ReadExecutions(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, []int64{cycles[0].Seq, cycles[1].Seq})
	assert.Equal(t, []int64{2, 4}, []int64{execs[0].Seq, execs[1].Seq})
	assert.Equal(t, []int64{1, 2}, []int64{execs[0].CycleID, execs[1].CycleID})
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/store"
)

var logEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func cycleAt(session string, cycleID, seq int64, outcome string, dirs []string, pattern, action string) store.CycleRecord {
	started := logEpoch.Add(time.Duration(seq) * time.Second)
	return store.CycleRecord{
		Session:    session,
		CycleID:    cycleID,
		Seq:        seq,
		Outcome:    outcome,
		StartedAt:  started,
		EndedAt:    started.Add(250 * time.Millisecond),
		Points:     len(dirs) * 4,
		Directions: dirs,
		Pattern:    pattern,
		Action:     action,
		Matched:    action != "",
		Suppressed: outcome == "gesture",
	}
}

// seedInteractionLog writes two sessions to a fresh log:
//
//	session-a: short click, down-right → close (ok), left-down (no match)
//	session-b: up-right → nextTab (failed)
func seedInteractionLog(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "log.db")
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.WriteCycle(ctx, cycleAt("session-a", 1, 1, "short_click", nil, "", "")))
	require.NoError(t, st.WriteCycle(ctx, cycleAt("session-a", 2, 2, "gesture", []string{"down", "right"}, "down-right", "close")))
	require.NoError(t, st.WriteExecution(ctx, store.ExecutionRecord{
		Session: "session-a", CycleID: 2, Seq: 3, Action: "close", OK: true,
	}))
	require.NoError(t, st.WriteCycle(ctx, cycleAt("session-a", 3, 4, "gesture", []string{"left", "down"}, "left-down", "")))

	require.NoError(t, st.WriteCycle(ctx, cycleAt("session-b", 1, 5, "gesture", []string{"up", "right"}, "up-right", "nextTab")))
	require.NoError(t, st.WriteExecution(ctx, store.ExecutionRecord{
		Session: "session-b", CycleID: 1, Seq: 6, Action: "nextTab", OK: false,
		Code: "INVALID_TAB", Message: "no tab after 1",
	}))

	return dbPath
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--session", "session-a"}) // Missing --db flag

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", "/nonexistent/path/test.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceListSessions(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "=== Sessions ===")
	assert.Contains(t, output, "session-a  seq 1-4  cycles=3 gestures=2 matched=1 executions=1 failures=0")
	assert.Contains(t, output, "session-b  seq 5-5  cycles=1 gestures=1 matched=1 executions=1 failures=1")
}

func TestTraceListSessionsJSON(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string                 `json:"status"`
		Data   []store.SessionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "session-a", resp.Data[0].Session)
	assert.Equal(t, "session-b", resp.Data[1].Session)
}

func TestTraceEmptyLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No sessions recorded.")
}

func TestTraceUnknownSession(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "nope"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No events found for session: nope")
}

func TestTraceSessionTimeline(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "session-a"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Trace for Session: session-a")
	assert.Contains(t, output, "=== Timeline ===")
	assert.Contains(t, output, "[1] CYCLE 1 short_click\n")
	assert.Contains(t, output, "[2] CYCLE 2 gesture down-right → close [menu suppressed]")
	assert.Contains(t, output, "[3] EXEC close ok")
	assert.Contains(t, output, "[4] CYCLE 3 gesture left-down (no match)")
	assert.Contains(t, output, "=== Stats ===")
	assert.Contains(t, output, "Cycles:       3 (gesture=2, short_click=1)")
	assert.Contains(t, output, "Failures:     0")
	assert.NotContains(t, output, "Directions:")
}

func TestTraceSessionVerbose(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "session-b"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Directions: up right")
	assert.Contains(t, output, "Duration: 250ms")
	assert.Contains(t, output, "[6] EXEC nextTab failed: INVALID_TAB")
	assert.Contains(t, output, "Message: no tab after 1")
}

func TestTraceActionFilter(t *testing.T) {
	dbPath := seedInteractionLog(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--session", "session-a", "--action", "close"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status  string      `json:"status"`
		Session string      `json:"session"`
		Data    TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "session-a", resp.Session)
	require.Len(t, resp.Data.Timeline, 2)
	assert.Equal(t, EventCycle, resp.Data.Timeline[0].Type)
	assert.Equal(t, EventExecution, resp.Data.Timeline[1].Type)
	assert.Equal(t, 1, resp.Data.Stats.Cycles)
	assert.Equal(t, 1, resp.Data.Stats.Executions)
}

func TestBuildTimelineOrdersBySeq(t *testing.T) {
	cycles := []store.CycleRecord{
		cycleAt("s", 1, 1, "gesture", []string{"left"}, "left", "back"),
		cycleAt("s", 2, 3, "short_click", nil, "", ""),
	}
	execs := []store.ExecutionRecord{
		{Session: "s", CycleID: 1, Seq: 2, Action: "back", OK: true},
	}

	timeline := buildTimeline(cycles, execs, "")
	require.Len(t, timeline, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{timeline[0].Seq, timeline[1].Seq, timeline[2].Seq})

	stats := traceStats(timeline)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 2, stats.Cycles)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, map[string]int{"gesture": 1, "short_click": 1}, stats.Outcomes)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "0192f5e4...9abcdef0", truncateID("0192f5e4-0000-7000-8000-00009abcdef0"))
}

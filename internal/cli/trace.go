package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/store"
)

// Timeline event types.
const (
	EventCycle     = "cycle"
	EventExecution = "execution"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Action   string // optional - filter to specific action
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq        int64    `json:"seq"`
	Type       string   `json:"type"` // "cycle" or "execution"
	CycleID    int64    `json:"cycle_id"`
	Outcome    string   `json:"outcome,omitempty"`
	Points     int      `json:"points,omitempty"`
	Directions []string `json:"directions,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Action     string   `json:"action,omitempty"`
	Matched    bool     `json:"matched,omitempty"`
	Suppressed bool     `json:"suppressed,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	OK         bool     `json:"ok,omitempty"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Cycles      int            `json:"cycles"`
	Outcomes    map[string]int `json:"outcomes"`
	Matched     int            `json:"matched"`
	Executions  int            `json:"executions"`
	Failures    int            `json:"failures"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the interaction log",
		Long: `Show what happened in recorded gesture sessions.

Without --session, lists every session in the log with cycle, gesture
and execution counts. With --session, shows that session's timeline:
each finished cycle with its outcome, direction sequence and matched
action, followed by the result of every executed action.

The output includes:
- Timeline: Cycles and action results in seq order
- Stats: Outcome counts, matches and execution failures

Examples:
  rightstroke trace --db ./rightstroke.db
  rightstroke trace --db ./rightstroke.db --session 0192f5e4-...
  rightstroke trace --db ./rightstroke.db --session 0192f5e4-... --action close
  rightstroke trace --db ./rightstroke.db --session 0192f5e4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite interaction log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace (lists sessions when empty)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to cycles that matched this action")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, opts, cmd)
	}

	cycles, err := st.ReadCycles(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read cycles", err)
	}
	execs, err := st.ReadExecutions(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read executions", err)
	}

	if len(cycles) == 0 && len(execs) == 0 {
		if opts.Format == "json" {
			return writeResponse(cmd.OutOrStdout(), CLIResponse{
				Status:  "ok",
				Session: opts.Session,
				Data: TraceResult{
					Session:  opts.Session,
					Timeline: []TraceEvent{},
					Stats:    TraceStats{Outcomes: map[string]int{}},
				},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No events found for session: %s\n", opts.Session)
		return nil
	}

	timeline := buildTimeline(cycles, execs, opts.Action)
	result := TraceResult{
		Session:  opts.Session,
		Timeline: timeline,
		Stats:    traceStats(timeline),
	}

	if opts.Format == "json" {
		return writeResponse(cmd.OutOrStdout(), CLIResponse{
			Status:  "ok",
			Session: opts.Session,
			Data:    result,
		})
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// openExistingStore opens the log at path, refusing to create a new one.
func openExistingStore(path string) (*store.Store, error) {
	if !fileExists(path) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func listSessions(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	if opts.Format == "json" {
		return writeResponse(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: sessions})
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}

	fmt.Fprintln(w, "=== Sessions ===")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  seq %d-%d  cycles=%d gestures=%d matched=%d executions=%d failures=%d\n",
			truncateID(s.Session), s.FirstSeq, s.LastSeq,
			s.Cycles, s.Gestures, s.Matched, s.Executions, s.Failures)
		if opts.Verbose {
			fmt.Fprintf(w, "       Session: %s\n", s.Session)
		}
	}
	return nil
}

// buildTimeline merges cycles and executions into seq order. When
// actionFilter is set, only cycles that matched that action and their
// executions are kept.
func buildTimeline(cycles []store.CycleRecord, execs []store.ExecutionRecord, actionFilter string) []TraceEvent {
	kept := make(map[int64]bool)
	timeline := make([]TraceEvent, 0, len(cycles)+len(execs))

	for _, c := range cycles {
		if actionFilter != "" && c.Action != actionFilter {
			continue
		}
		kept[c.CycleID] = true
		timeline = append(timeline, TraceEvent{
			Seq:        c.Seq,
			Type:       EventCycle,
			CycleID:    c.CycleID,
			Outcome:    c.Outcome,
			Points:     c.Points,
			Directions: c.Directions,
			Pattern:    c.Pattern,
			Action:     c.Action,
			Matched:    c.Matched,
			Suppressed: c.Suppressed,
			DurationMS: c.EndedAt.Sub(c.StartedAt).Milliseconds(),
		})
	}

	for _, e := range execs {
		if actionFilter != "" && !kept[e.CycleID] {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:     e.Seq,
			Type:    EventExecution,
			CycleID: e.CycleID,
			Action:  e.Action,
			OK:      e.OK,
			Code:    e.Code,
			Message: e.Message,
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Seq < timeline[j].Seq
	})
	return timeline
}

func traceStats(timeline []TraceEvent) TraceStats {
	stats := TraceStats{
		TotalEvents: len(timeline),
		Outcomes:    make(map[string]int),
	}
	for _, ev := range timeline {
		switch ev.Type {
		case EventCycle:
			stats.Cycles++
			stats.Outcomes[ev.Outcome]++
			if ev.Matched {
				stats.Matched++
			}
		case EventExecution:
			stats.Executions++
			if !ev.OK {
				stats.Failures++
			}
		}
	}
	return stats
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintln(w)

	// Timeline section
	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Cycles:       %d (%s)\n", result.Stats.Cycles, formatOutcomes(result.Stats.Outcomes))
	fmt.Fprintf(w, "  Matched:      %d\n", result.Stats.Matched)
	fmt.Fprintf(w, "  Executions:   %d\n", result.Stats.Executions)
	fmt.Fprintf(w, "  Failures:     %d\n", result.Stats.Failures)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	switch event.Type {
	case EventCycle:
		line := fmt.Sprintf("  [%d] CYCLE %d %s", event.Seq, event.CycleID, event.Outcome)
		switch {
		case event.Matched:
			line += fmt.Sprintf(" %s → %s", event.Pattern, event.Action)
		case event.Pattern != "":
			line += fmt.Sprintf(" %s (no match)", event.Pattern)
		}
		if event.Suppressed {
			line += " [menu suppressed]"
		}
		fmt.Fprintln(w, line)
		if verbose {
			fmt.Fprintf(w, "       Points: %d  Duration: %dms\n", event.Points, event.DurationMS)
			if len(event.Directions) > 0 {
				fmt.Fprintf(w, "       Directions: %s\n", strings.Join(event.Directions, " "))
			}
		}

	case EventExecution:
		if event.OK {
			fmt.Fprintf(w, "  [%d] EXEC %s ok\n", event.Seq, event.Action)
			return
		}
		fmt.Fprintf(w, "  [%d] EXEC %s failed: %s\n", event.Seq, event.Action, event.Code)
		if verbose && event.Message != "" {
			fmt.Fprintf(w, "       Message: %s\n", event.Message)
		}
	}
}

// formatOutcomes renders outcome counts with sorted keys for deterministic
// output.
func formatOutcomes(outcomes map[string]int) string {
	if len(outcomes) == 0 {
		return "none"
	}

	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, outcomes[k]))
	}
	return strings.Join(parts, ", ")
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

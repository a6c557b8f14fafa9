package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplayMismatch describes one recorded cycle or execution that disagrees
// with the current rules.
type ReplayMismatch struct {
	Seq      int64  `json:"seq"`
	CycleID  int64  `json:"cycle_id"`
	Pattern  string `json:"pattern"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
	Reason   string `json:"reason"`
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string           `json:"session"`
	Cycles        int              `json:"cycles"`
	Gestures      int              `json:"gestures"`
	Executions    int              `json:"executions"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-match recorded gestures against the current rules",
		Long: `Replay the interaction log and verify recognition is deterministic.

Every recorded gesture cycle's direction sequence is matched again with
the current rules. The replayed pattern and action must equal what was
recorded, cycles that were not gestures must not carry an action, and
every executed action must belong to a cycle that matched it.

Exit codes:
  0 - Every session replays identically
  1 - One or more cycles disagree with the current rules
  2 - Command error (database not found, etc.)

Examples:
  rightstroke replay --db ./rightstroke.db
  rightstroke replay --db ./rightstroke.db --session 0192f5e4-...
  rightstroke replay --db ./rightstroke.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite interaction log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// Get sessions to process
	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		summaries, err := st.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range summaries {
			sessions = append(sessions, s.Session)
		}
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Sessions:         []ReplaySessionResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	for _, session := range sessions {
		sessionResult, err := replaySession(ctx, st, session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}

		result.Sessions = append(result.Sessions, sessionResult)
		if !sessionResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replaySession re-matches every cycle of one session.
func replaySession(ctx context.Context, st *store.Store, session string) (ReplaySessionResult, error) {
	cycles, err := st.ReadCycles(ctx, session)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	execs, err := st.ReadExecutions(ctx, session)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	result := ReplaySessionResult{
		Session:    session,
		Cycles:     len(cycles),
		Executions: len(execs),
	}

	matchedAction := make(map[int64]string, len(cycles))
	for _, c := range cycles {
		if c.Outcome == string(arbiter.OutcomeGesture) {
			result.Gestures++
		}
		if m, ok := replayCycle(c); !ok {
			result.Mismatches = append(result.Mismatches, m)
		}
		if c.Matched {
			matchedAction[c.CycleID] = c.Action
		}
	}

	for _, e := range execs {
		recorded, ok := matchedAction[e.CycleID]
		if ok && recorded == e.Action {
			continue
		}
		result.Mismatches = append(result.Mismatches, ReplayMismatch{
			Seq:      e.Seq,
			CycleID:  e.CycleID,
			Recorded: recorded,
			Replayed: e.Action,
			Reason:   "executed action does not belong to a matching cycle",
		})
	}

	result.Deterministic = len(result.Mismatches) == 0
	return result, nil
}

// replayCycle matches a recorded cycle's directions again. It returns false
// with a description when the result differs from the record.
func replayCycle(c store.CycleRecord) (ReplayMismatch, bool) {
	mismatch := ReplayMismatch{
		Seq:      c.Seq,
		CycleID:  c.CycleID,
		Pattern:  c.Pattern,
		Recorded: c.Action,
	}

	if c.Outcome != string(arbiter.OutcomeGesture) {
		if c.Action != "" || c.Matched {
			mismatch.Reason = fmt.Sprintf("%s cycle carries an action", c.Outcome)
			return mismatch, false
		}
		return ReplayMismatch{}, true
	}

	seq := make(gesture.Sequence, 0, len(c.Directions))
	for _, name := range c.Directions {
		d, err := gesture.ParseDirection(name)
		if err != nil {
			mismatch.Reason = err.Error()
			return mismatch, false
		}
		seq = append(seq, d)
	}

	if pattern := seq.Pattern(); pattern != c.Pattern {
		mismatch.Reason = fmt.Sprintf("directions give pattern %q", pattern)
		return mismatch, false
	}

	action, matched := gesture.Match(seq)
	mismatch.Replayed = string(action)
	if matched != c.Matched || string(action) != c.Action {
		mismatch.Reason = "rules produce a different action"
		return mismatch, false
	}
	return ReplayMismatch{}, true
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeReplayMismatch,
			Message: "recorded gestures disagree with the current rules",
		}
	}

	if err := writeResponse(cmd.OutOrStdout(), response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay mismatch")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", status, s.Session)
		if verbose {
			fmt.Fprintf(w, "  Cycles: %d, Gestures: %d, Executions: %d\n", s.Cycles, s.Gestures, s.Executions)
		}
		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "  [%d] cycle %d: %s (recorded %q, replayed %q)\n",
				m.Seq, m.CycleID, m.Reason, m.Recorded, m.Replayed)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replayed %d session(s)\n", result.TotalSessions)

	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Replay mismatch detected")
		return NewExitError(ExitFailure, "replay mismatch")
	}

	fmt.Fprintln(w, "✓ All sessions replay identically")
	return nil
}

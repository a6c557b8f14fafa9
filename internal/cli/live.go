package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/store"
	"github.com/roach88/rightstroke/internal/tui"
)

// newScreen creates the terminal screen for live. Tests swap in a
// simulation screen.
var newScreen = tcell.NewScreen

// LiveOptions holds flags for the live command.
type LiveOptions struct {
	*RootOptions
	Database   string
	Settings   string
	LogFile    string
	URLs       []string
	CellWidth  int
	CellHeight int

	// SessionGenerator allows overriding the session token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

// NewLiveCommand creates the live command.
func NewLiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Try gestures in the terminal",
		Long: `Draw gestures with the right mouse button in the terminal.

A row of tabs is shown at the top. Hold the right button and drag to draw
a gesture; the trail is drawn as you move and the recognized action runs
against the tabs when you release. A right click without movement opens
the context menu instead.

Each cell counts as --cell-width by --cell-height pixels, so a 50px leg is
5 columns or 3 rows by default.

Keys:
  g       toggle gestures on and off
  q, Esc  quit

Examples:
  rightstroke live
  rightstroke live --db ./rightstroke.db --settings ./settings.cue
  rightstroke live --log-file ./live.log --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite interaction log")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "path to CUE settings file")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file (logs are discarded otherwise)")
	cmd.Flags().StringSliceVar(&opts.URLs, "url", tui.DefaultURLs, "initial tab URLs")
	cmd.Flags().IntVar(&opts.CellWidth, "cell-width", tui.DefaultScaleX, "pixels per column")
	cmd.Flags().IntVar(&opts.CellHeight, "cell-height", tui.DefaultScaleY, "pixels per row")

	return cmd
}

func runLive(opts *LiveOptions, cmd *cobra.Command) error {
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("cell size must be positive, got %dx%d", opts.CellWidth, opts.CellHeight))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	appOpts := []tui.Option{
		tui.WithArbiterConfig(arbiter.DefaultConfig()),
		tui.WithScale(opts.CellWidth, opts.CellHeight),
		tui.WithURLs(opts.URLs...),
	}
	if opts.SessionGenerator != nil {
		appOpts = append(appOpts, tui.WithSessionGenerator(opts.SessionGenerator))
	}

	// The screen owns the terminal, so logs only go to a file.
	var logger *slog.Logger
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logger = newLogger(f, opts.Verbose)
		appOpts = append(appOpts, tui.WithLogger(logger))
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil && logger != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		appOpts = append(appOpts, tui.WithStore(st))
	}

	if opts.Settings != "" {
		if logger == nil {
			logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
		}
		provider, err := watchSettings(ctx, opts.Settings, logger)
		if err != nil {
			return err
		}
		defer provider.Close()
		appOpts = append(appOpts, tui.WithSettingsProvider(provider))
	}

	screen, err := newScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}

	app := tui.New(screen, appOpts...)
	if err := app.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "live session failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n", app.Session())
	if opts.Database != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Inspect with: rightstroke trace --db %s --session %s\n", opts.Database, app.Session())
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/server"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/store"
	"github.com/roach88/rightstroke/internal/toast"
	"github.com/roach88/rightstroke/internal/tui"
)

// DefaultAddr is where serve listens unless --addr is given.
const DefaultAddr = "localhost:8383"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr      string
	Database  string
	Settings  string
	CORS      bool
	LocalTabs bool
	Toast     time.Duration

	// SessionGenerator allows overriding the session token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gesture protocol over websocket",
		Long: `Start the websocket gesture server.

Every connection to /ws gets its own engine. Clients send press, move,
release and contextmenu events as JSON and receive verdicts, recognized
gestures, trail paths, toasts and execute requests back.

With --db, every cycle and action result is appended to a SQLite
interaction log (created if it doesn't exist). With --settings, a CUE
settings file is loaded and followed for changes.

Example:
  rightstroke serve
  rightstroke serve --addr 8080 --db ./rightstroke.db --settings ./settings.cue
  rightstroke serve --local-tabs --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", DefaultAddr, "listen address (host:port or port)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite interaction log")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "path to CUE settings file")
	cmd.Flags().BoolVar(&opts.CORS, "cors", false, "accept websocket connections from any origin")
	cmd.Flags().BoolVar(&opts.LocalTabs, "local-tabs", false, "run actions on an in-memory tab window instead of the client")
	cmd.Flags().DurationVar(&opts.Toast, "toast", toast.DefaultDuration, "how long toasts stay visible")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logger := newLogger(os.Stderr, opts.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	serverOpts := []server.Option{
		server.WithArbiterConfig(arbiter.DefaultConfig()),
		server.WithCORS(opts.CORS),
		server.WithToastDuration(opts.Toast),
		server.WithLogger(logger),
	}
	if opts.SessionGenerator != nil {
		serverOpts = append(serverOpts, server.WithSessionGenerator(opts.SessionGenerator))
	}

	// Open database (create if not exists)
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		serverOpts = append(serverOpts, server.WithStore(st))
	}

	if opts.Settings != "" {
		provider, err := watchSettings(ctx, opts.Settings, logger)
		if err != nil {
			return err
		}
		defer provider.Close()
		serverOpts = append(serverOpts, server.WithSettingsProvider(provider))
	}

	if opts.LocalTabs {
		serverOpts = append(serverOpts, server.WithExecutorFactory(func() arbiter.Executor {
			return executor.NewTabExecutor(executor.NewWindow(tui.DefaultURLs...))
		}))
	}

	srv := server.New(serverOpts...)

	fmt.Fprintf(cmd.OutOrStdout(), "Gesture server starting on %s (websocket path /ws)\n", opts.Addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.ListenAndServe(ctx, opts.Addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newLogger returns a text logger at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, or when
// the command's own context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan) // Prevent signal handler leak
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	return ctx, cancel
}

// watchSettings loads a settings file and follows it until ctx ends. A
// missing file is a command error; later read failures keep the previous
// values.
func watchSettings(ctx context.Context, path string, logger *slog.Logger) (*settings.File, error) {
	provider := settings.NewFile(path, settings.WithLogger(logger))
	if _, err := provider.Load(ctx); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	if err := provider.Watch(ctx); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to watch settings", err)
	}
	return provider, nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/store"
	"github.com/roach88/rightstroke/internal/toast"
)

// HTTP server timeouts.
const (
	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 5 * time.Second

	// WriteTimeout bounds each websocket write. A client that stops
	// reading fails its writes instead of stalling its engine.
	WriteTimeout = 10 * time.Second
)

// Server serves the gesture protocol. Each websocket connection gets its
// own Engine.
type Server struct {
	cfg           arbiter.Config
	store         *store.Store
	provider      settings.Provider
	newExecutor   func() arbiter.Executor
	enableCORS    bool
	toastDuration time.Duration
	writeTimeout  time.Duration
	sessionGen    engine.SessionGenerator
	logger        *slog.Logger

	upgrader *websocket.Upgrader

	mu       sync.Mutex
	base     context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithArbiterConfig sets the thresholds used by every connection.
func WithArbiterConfig(cfg arbiter.Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithStore records every connection's cycles in st.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithSettingsProvider shares one settings source between connections.
func WithSettingsProvider(p settings.Provider) Option {
	return func(s *Server) {
		s.provider = p
	}
}

// WithExecutorFactory makes each connection execute actions on the
// executor returned by fn instead of sending them to the client.
func WithExecutorFactory(fn func() arbiter.Executor) Option {
	return func(s *Server) {
		s.newExecutor = fn
	}
}

// WithCORS accepts websocket upgrades from any origin.
func WithCORS(enable bool) Option {
	return func(s *Server) {
		s.enableCORS = enable
	}
}

// WithToastDuration sets how long toasts stay up before a clear is sent.
func WithToastDuration(d time.Duration) Option {
	return func(s *Server) {
		s.toastDuration = d
	}
}

// WithWriteTimeout sets how long a single websocket write may block.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithSessionGenerator sets the session token source for new connections.
func WithSessionGenerator(g engine.SessionGenerator) Option {
	return func(s *Server) {
		s.sessionGen = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		cfg:           arbiter.DefaultConfig(),
		toastDuration: toast.DefaultDuration,
		writeTimeout:  WriteTimeout,
		sessionGen:    engine.UUIDv7Generator{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	s.upgrader = newUpgrader(s.enableCORS)
	return s
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

// Handler returns the HTTP routes: /ws for the protocol and / for a banner.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "rightstroke gesture server; connect to /ws")
	})
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// and waits for every connection's engine to stop. A bare port ("8080")
// listens on all interfaces.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	addr, err := normalizeAddr(addr)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gesture server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; Close
	// stops their engines, which closes the connections.
	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops every connection and waits for their engines to finish.
func (s *Server) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.sessions.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.base.Err() != nil {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	s.sessions.Add(1)
	s.mu.Unlock()
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := newSession(s, conn)
	sess.run(s.base)
}

func normalizeAddr(addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("address is required")
	}
	// if host is missing, default to all interfaces
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

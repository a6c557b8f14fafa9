package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/toast"
	"github.com/roach88/rightstroke/internal/trail"
)

// session is one websocket connection and the Engine it owns.
type session struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	eng          *engine.Engine
	notifier     *toast.Notifier
	logger       *slog.Logger
}

func newSession(s *Server, conn *websocket.Conn) *session {
	sess := &session{conn: conn, writeTimeout: s.writeTimeout}
	sess.notifier = toast.NewNotifier(toastDisplay{sess: sess}, toast.WithDuration(s.toastDuration))

	var exec arbiter.Executor = remoteExecutor{send: sess.sendJSON}
	if s.newExecutor != nil {
		exec = s.newExecutor()
	}

	sess.eng = engine.New(
		engine.WithConfig(s.cfg),
		engine.WithStore(s.store),
		engine.WithSettingsProvider(s.provider),
		engine.WithExecutor(exec),
		engine.WithTrail(trail.NewPath(func(d string) { sess.send(trailMessage(d)) })),
		engine.WithToast(sess.notifier),
		engine.WithLogger(s.logger),
		engine.WithSessionGenerator(s.sessionGen),
		engine.WithCycleHook(func(c arbiter.Cycle) { sess.send(gestureMessage(c)) }),
		engine.WithExecutionHook(func(r executor.Result) { sess.send(executionMessage(r)) }),
	)
	sess.logger = s.logger.With("session", sess.eng.Session())
	return sess
}

// run serves the connection until the client goes away or ctx is
// cancelled.
func (sess *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- sess.eng.Run(ctx)
	}()

	// Closing the connection unblocks ReadMessage on shutdown.
	go func() {
		<-ctx.Done()
		sess.conn.Close()
	}()

	sess.logger.Info("client connected", "remote", sess.conn.RemoteAddr().String())
	sess.send(HelloMessage{Type: TypeHello, Session: sess.eng.Session()})

	sess.readLoop(ctx)

	sess.eng.Stop()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		sess.logger.Warn("engine stopped with error", "error", err)
	}
	sess.notifier.Close()
	sess.logger.Info("client disconnected")
}

func (sess *session) readLoop(ctx context.Context) {
	for {
		messageType, message, err := sess.conn.ReadMessage()
		if err != nil {
			// connection closed or error
			sess.logger.Debug("websocket connection closed", "error", err)
			return
		}

		if messageType != websocket.TextMessage {
			sess.sendError(ErrCodeInvalidMessage, "only text messages accepted")
			continue
		}

		sess.handleMessage(ctx, message)
	}
}

func (sess *session) handleMessage(ctx context.Context, message []byte) {
	m, err := ParseInput(message)
	if err != nil {
		sess.sendError(ErrCodeParse, "expecting a JSON object: "+err.Error())
		return
	}

	if m.Type == TypeState {
		st, err := sess.eng.State(ctx)
		if err != nil {
			sess.sendError(ErrCodeStopped, err.Error())
			return
		}
		sess.send(StateMessage{
			Type:          TypeState,
			ID:            m.ID,
			Mode:          st.Mode.String(),
			Cycle:         st.Cycle,
			Points:        st.Points,
			AllowNextMenu: st.AllowNextMenu,
			SuppressMenu:  st.SuppressMenu,
			Settings:      st.Settings,
		})
		return
	}

	ev, err := m.Event(time.Now)
	if err != nil {
		code := ErrCodeInvalidMessage
		var unknown *unknownTypeError
		if errors.As(err, &unknown) {
			code = ErrCodeUnknownType
		}
		sess.sendError(code, err.Error())
		return
	}

	// The client holds the native menu until it gets the verdict.
	if _, ok := ev.(arbiter.ContextMenu); ok {
		res, err := sess.eng.Submit(ctx, ev)
		if err != nil {
			sess.sendError(ErrCodeStopped, err.Error())
			return
		}
		sess.send(VerdictMessage{Type: TypeVerdict, ID: m.ID, Verdict: res.Verdict.String()})
		return
	}

	if !sess.eng.Enqueue(ev) {
		sess.sendError(ErrCodeStopped, engine.ErrStopped.Error())
	}
}

// send writes v and logs, rather than returns, a failed write. A failed
// write means the client is gone; the read loop notices on its own.
func (sess *session) send(v any) {
	if err := sess.sendJSON(v); err != nil {
		sess.logger.Debug("websocket write failed", "error", err)
	}
}

func (sess *session) sendError(code, message string) {
	sess.send(ErrorMessage{Type: TypeError, Code: code, Message: message})
}

func (sess *session) sendJSON(v any) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.SetWriteDeadline(time.Now().Add(sess.writeTimeout)); err != nil {
		return err
	}
	return sess.conn.WriteJSON(v)
}

// toastDisplay forwards toasts to the client.
type toastDisplay struct {
	sess *session
}

func (d toastDisplay) Show(text string) {
	d.sess.send(ToastMessage{Type: TypeToast, Text: text})
}

func (d toastDisplay) Clear() {
	d.sess.send(ToastMessage{Type: TypeToast})
}

// remoteExecutor hands actions back to the client, which owns the tabs.
type remoteExecutor struct {
	send func(any) error
}

func (x remoteExecutor) Execute(ctx context.Context, action gesture.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cycle, _ := arbiter.CycleFromContext(ctx)
	if err := x.send(ExecuteMessage{Type: TypeExecute, Cycle: cycle, Action: string(action)}); err != nil {
		return &executor.ActionError{
			Code:    executor.ErrCodeUnavailable,
			Message: "client unreachable: " + err.Error(),
			Action:  action,
		}
	}
	return nil
}

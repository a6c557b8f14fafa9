package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/store"
	"github.com/roach88/rightstroke/internal/toast"
)

// DefaultURLs are the tabs the window starts with.
var DefaultURLs = []string{
	"https://example.com",
	"https://go.dev/doc",
	"https://pkg.go.dev/std",
}

// errQuit is posted as interrupt data to stop the event loop.
var errQuit = errors.New("quit")

// App runs the engine against a terminal screen.
//
// Thread-safety: the engine hooks, trail and toast display write the view
// under mu and post an interrupt; drawing happens on the event loop only.
type App struct {
	screen   tcell.Screen
	window   *executor.Window
	eng      *engine.Engine
	notifier *toast.Notifier
	mouse    *mouseTracker
	logger   *slog.Logger

	mu   sync.Mutex
	view view
}

// view is everything the screen shows besides the tab row.
type view struct {
	trail    []gesture.Point
	toast    string
	status   string
	menu     *cellPos
	settings settings.Settings
}

type cellPos struct {
	x, y int
}

type appConfig struct {
	scaleX, scaleY int
	urls           []string
	arbiterCfg     arbiter.Config
	store          *store.Store
	provider       settings.Provider
	logger         *slog.Logger
	sessionGen     engine.SessionGenerator
}

// Option configures an App.
type Option func(*appConfig)

// WithScale sets the pixel size of one cell.
func WithScale(x, y int) Option {
	return func(c *appConfig) {
		if x > 0 && y > 0 {
			c.scaleX, c.scaleY = x, y
		}
	}
}

// WithURLs replaces the initial tabs.
func WithURLs(urls ...string) Option {
	return func(c *appConfig) {
		c.urls = urls
	}
}

// WithArbiterConfig sets the gesture thresholds.
func WithArbiterConfig(cfg arbiter.Config) Option {
	return func(c *appConfig) {
		c.arbiterCfg = cfg
	}
}

// WithStore records cycles in st.
func WithStore(st *store.Store) Option {
	return func(c *appConfig) {
		c.store = st
	}
}

// WithSettingsProvider sets the settings source.
func WithSettingsProvider(p settings.Provider) Option {
	return func(c *appConfig) {
		c.provider = p
	}
}

// WithSessionGenerator sets the session token source.
func WithSessionGenerator(g engine.SessionGenerator) Option {
	return func(c *appConfig) {
		c.sessionGen = g
	}
}

// WithLogger sets the logger. The screen owns the terminal, so the
// default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *appConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an App drawing on screen. Run initializes the screen.
func New(screen tcell.Screen, opts ...Option) *App {
	cfg := appConfig{
		scaleX:     DefaultScaleX,
		scaleY:     DefaultScaleY,
		urls:       DefaultURLs,
		arbiterCfg: arbiter.DefaultConfig(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionGen: engine.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &App{
		screen: screen,
		window: executor.NewWindow(cfg.urls...),
		mouse:  newMouseTracker(cfg.scaleX, cfg.scaleY),
		logger: cfg.logger,
		view:   view{settings: settings.Defaults()},
	}
	a.notifier = toast.NewNotifier(statusDisplay{app: a})

	engOpts := []engine.Option{
		engine.WithConfig(cfg.arbiterCfg),
		engine.WithExecutor(executor.NewTabExecutor(a.window)),
		engine.WithTrail(dotTrail{app: a}),
		engine.WithToast(a.notifier),
		engine.WithLogger(cfg.logger),
		engine.WithSessionGenerator(cfg.sessionGen),
		engine.WithCycleHook(a.onCycle),
		engine.WithExecutionHook(a.onExecution),
		engine.WithSettingsHook(a.onSettings),
	}
	if cfg.store != nil {
		engOpts = append(engOpts, engine.WithStore(cfg.store))
	}
	if cfg.provider != nil {
		engOpts = append(engOpts, engine.WithSettingsProvider(cfg.provider))
	}
	a.eng = engine.New(engOpts...)
	return a
}

// Window returns the tab window actions run against.
func (a *App) Window() *executor.Window {
	return a.window
}

// Session returns the engine's session token.
func (a *App) Session() string {
	return a.eng.Session()
}

// Run takes over the screen and processes input until the user quits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer a.screen.Fini()
	a.screen.Clear()
	a.screen.EnableMouse()
	defer a.screen.DisableMouse()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.eng.Run(ctx)
	}()
	defer func() {
		a.eng.Stop()
		if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("engine stopped with error", "error", err)
		}
		a.notifier.Close()
	}()

	go func() {
		<-ctx.Done()
		a.screen.PostEvent(tcell.NewEventInterrupt(errQuit))
	}()

	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if quit := a.handle(ctx, ev); quit {
			return nil
		}
	}
}

// handle processes one screen event and reports whether to quit.
func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch tev := ev.(type) {
	case *tcell.EventInterrupt:
		if tev.Data() == errQuit {
			return true
		}
		a.draw()

	case *tcell.EventResize:
		a.screen.Sync()
		a.draw()

	case *tcell.EventKey:
		switch {
		case tev.Key() == tcell.KeyCtrlC, tev.Key() == tcell.KeyEscape:
			return true
		case tev.Key() == tcell.KeyRune && tev.Rune() == 'q':
			return true
		case tev.Key() == tcell.KeyRune && tev.Rune() == 'g':
			a.toggleGestures()
		}
		a.dismissMenu()
		a.draw()

	case *tcell.EventMouse:
		x, y := tev.Position()
		for _, e := range a.mouse.translate(x, y, tev.Buttons(), tev.When()) {
			a.dispatch(ctx, e)
		}
		a.draw()
	}
	return false
}

// dispatch feeds one pointer event to the engine. A right release is
// followed by a synthetic contextmenu, the way a browser fires one.
func (a *App) dispatch(ctx context.Context, ev arbiter.Event) {
	if _, ok := ev.(arbiter.Press); ok {
		a.dismissMenu()
	}
	if !a.eng.Enqueue(ev) {
		return
	}

	rel, ok := ev.(arbiter.Release)
	if !ok || rel.Button != arbiter.ButtonRight {
		return
	}
	res, err := a.eng.Submit(ctx, arbiter.ContextMenu{Time: rel.Time})
	if err != nil {
		a.logger.Debug("contextmenu not answered", "error", err)
		return
	}
	if res.Verdict == arbiter.VerdictShow {
		x, y := a.mouse.cell(rel.Point)
		a.mu.Lock()
		a.view.menu = &cellPos{x: x, y: y}
		a.mu.Unlock()
	}
}

func (a *App) toggleGestures() {
	a.mu.Lock()
	s := a.view.settings
	a.mu.Unlock()
	s.GesturesEnabled = !s.GesturesEnabled
	a.eng.Enqueue(arbiter.SettingsChanged{Settings: s})
}

func (a *App) dismissMenu() {
	a.mu.Lock()
	a.view.menu = nil
	a.mu.Unlock()
}

// update changes the view and asks the event loop to redraw.
func (a *App) update(fn func(v *view)) {
	a.mu.Lock()
	fn(&a.view)
	a.mu.Unlock()
	a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (a *App) snapshot() view {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.view
	v.trail = slices.Clone(a.view.trail)
	return v
}

func (a *App) onCycle(c arbiter.Cycle) {
	status := cycleStatus(c)
	if status == "" {
		return
	}
	a.update(func(v *view) { v.status = status })
}

func (a *App) onExecution(r executor.Result) {
	status := ""
	if r.Err != nil {
		status = fmt.Sprintf("%s failed: %s", r.Action.Label(), executor.CodeOf(r.Err))
	}
	a.update(func(v *view) {
		if status != "" {
			v.status = status
		}
	})
}

func (a *App) onSettings(s settings.Settings) {
	a.update(func(v *view) { v.settings = s })
}

// cycleStatus is the status line text for a finished cycle.
func cycleStatus(c arbiter.Cycle) string {
	switch c.Outcome {
	case arbiter.OutcomeGesture:
		r := c.Recognition
		if r == nil || r.Pattern == "" {
			return "no gesture"
		}
		if !r.Matched {
			return r.Pattern + ": unrecognized"
		}
		return r.Pattern + ": " + r.Action.Label()
	case arbiter.OutcomeDoubleClick:
		return "double click"
	case arbiter.OutcomeAborted:
		return "gesture cancelled"
	default:
		return ""
	}
}

// dotTrail is an arbiter.Trail that keeps the stroke for drawing.
type dotTrail struct {
	app *App
}

func (t dotTrail) Begin() {}

func (t dotTrail) Update(points []gesture.Point) {
	pts := slices.Clone(points)
	t.app.update(func(v *view) { v.trail = pts })
}

func (t dotTrail) End() {
	t.app.update(func(v *view) { v.trail = nil })
}

// statusDisplay shows toasts in the status line.
type statusDisplay struct {
	app *App
}

func (d statusDisplay) Show(text string) {
	d.app.update(func(v *view) { v.toast = text })
}

func (d statusDisplay) Clear() {
	d.app.update(func(v *view) { v.toast = "" })
}

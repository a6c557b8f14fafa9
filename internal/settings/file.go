package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrUnavailable is returned by File.Load when the settings file does not
// exist. Callers fall back to Defaults().
var ErrUnavailable = errors.New("settings unavailable")

// File is a Provider backed by a CUE document on disk.
//
// Load reads the file once. Watch follows later edits; every edit that
// parses and actually changes a value is delivered to subscribers. Edits
// that fail to parse are logged and ignored, keeping the last good values.
type File struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	current Settings
	loaded  bool
	subs    subscribers

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// FileOption configures a File provider.
type FileOption func(*File)

// WithLogger sets the logger used for reload warnings.
func WithLogger(l *slog.Logger) FileOption {
	return func(f *File) {
		f.logger = l
	}
}

// NewFile creates a provider for the CUE file at path.
// The path is made absolute so watch events can be matched reliably.
func NewFile(path string, opts ...FileOption) *File {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	f := &File{
		path:    filepath.Clean(path),
		logger:  slog.Default(),
		current: Defaults(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the absolute path of the settings file.
func (f *File) Path() string {
	return f.path
}

// Load reads and parses the file. On any failure it returns Defaults()
// together with the error.
func (f *File) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Defaults(), err
	}

	s, err := f.read()
	if err != nil {
		return Defaults(), err
	}

	f.mu.Lock()
	f.current = s
	f.loaded = true
	f.mu.Unlock()

	return s, nil
}

// Subscribe registers fn for changes picked up by Watch.
func (f *File) Subscribe(fn func(Settings)) func() {
	return f.subs.add(fn)
}

// Watch starts following the file until ctx is cancelled or Close is
// called. The parent directory is watched so that editors which save by
// renaming a temp file over the original are still followed.
func (f *File) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}

	f.wg.Add(1)
	go f.watchLoop(ctx, w)
	return nil
}

// Close stops the watcher and waits for it to exit.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
	return nil
}

func (f *File) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer f.wg.Done()
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			f.reload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Warn("settings watcher error", "path", f.path, "error", err)
		}
	}
}

// reload re-reads the file and notifies subscribers when a value changed.
func (f *File) reload() {
	s, err := f.read()
	if err != nil {
		f.logger.Warn("settings reload failed, keeping previous values", "path", f.path, "error", err)
		return
	}

	f.mu.Lock()
	changed := !f.loaded || f.current != s
	f.current = s
	f.loaded = true
	f.mu.Unlock()

	if changed {
		f.logger.Info("settings changed", "path", f.path,
			"gestures_enabled", s.GesturesEnabled, "debug_logging", s.DebugLogging)
		f.subs.notify(s)
	}
}

func (f *File) read() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), fmt.Errorf("%w: %s not found", ErrUnavailable, f.path)
		}
		return Defaults(), fmt.Errorf("read settings: %w", err)
	}
	return Parse(data, f.path)
}

package settings

import (
	"context"
	"slices"
	"sync"
)

// Settings are the process-wide gesture switches.
type Settings struct {
	GesturesEnabled bool `json:"gesturesEnabled" yaml:"gesturesEnabled"`
	DebugLogging    bool `json:"debugLogging" yaml:"debugLogging"`
}

// Defaults returns the settings used before (or instead of) a provider
// answering.
func Defaults() Settings {
	return Settings{GesturesEnabled: true, DebugLogging: false}
}

// Provider supplies settings and change notifications.
//
// Load may block (disk, network); callers should not hold detector state
// while waiting on it. Subscribe registers fn for every later change and
// returns a function that removes the subscription.
type Provider interface {
	Load(ctx context.Context) (Settings, error)
	Subscribe(fn func(Settings)) (cancel func())
}

// Static is a Provider with fixed settings and no changes.
type Static struct {
	Settings Settings
}

// Load returns the fixed settings.
func (s Static) Load(ctx context.Context) (Settings, error) {
	return s.Settings, nil
}

// Subscribe is a no-op; static settings never change.
func (s Static) Subscribe(fn func(Settings)) func() {
	return func() {}
}

// subscribers is a small registry of change callbacks shared by the mutable
// providers.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Settings)
}

func (s *subscribers) add(fn func(Settings)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(Settings))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

// notify calls every subscriber outside the lock, in registration order.
func (s *subscribers) notify(v Settings) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.fns))
	fns := make(map[int]func(Settings), len(s.fns))
	for id, fn := range s.fns {
		ids = append(ids, id)
		fns[id] = fn
	}
	s.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		fns[id](v)
	}
}

// Memory is a mutable in-process Provider.
type Memory struct {
	mu   sync.Mutex
	cur  Settings
	subs subscribers
}

// NewMemory creates a Memory provider holding initial.
func NewMemory(initial Settings) *Memory {
	return &Memory{cur: initial}
}

// Load returns the current settings.
func (m *Memory) Load(ctx context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur, nil
}

// Subscribe registers fn for changes made with Set.
func (m *Memory) Subscribe(fn func(Settings)) func() {
	return m.subs.add(fn)
}

// Set replaces the settings and notifies subscribers if anything changed.
func (m *Memory) Set(s Settings) {
	m.mu.Lock()
	changed := m.cur != s
	m.cur = s
	m.mu.Unlock()

	if changed {
		m.subs.notify(s)
	}
}

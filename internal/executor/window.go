package executor

import (
	"fmt"
	"sync"
)

// Tab is a snapshot of one browser tab.
type Tab struct {
	ID      int      `json:"id"`
	URL     string   `json:"url"`
	History []string `json:"history,omitempty"`
	Reloads int      `json:"reloads,omitempty"`
}

// Window is an ordered set of tabs with at most one active tab.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Window struct {
	mu     sync.Mutex
	tabs   []*Tab
	active int // tab ID, 0 when none
	nextID int
}

// NewWindow creates a window with one tab per URL. The first tab is active.
func NewWindow(urls ...string) *Window {
	w := &Window{}
	for _, u := range urls {
		w.openLocked(u)
	}
	if len(w.tabs) > 0 {
		w.active = w.tabs[0].ID
	}
	return w
}

// Open appends a tab and returns its ID. The active tab does not change
// unless the window had none.
func (w *Window) Open(url string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.openLocked(url)
	if w.active == 0 {
		w.active = id
	}
	return id
}

func (w *Window) openLocked(url string) int {
	w.nextID++
	w.tabs = append(w.tabs, &Tab{ID: w.nextID, URL: url})
	return w.nextID
}

// Navigate loads url in the tab, pushing the current URL onto its history.
func (w *Window) Navigate(id int, url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.findLocked(id)
	if t == nil {
		return fmt.Errorf("navigate: no tab %d", id)
	}
	t.History = append(t.History, t.URL)
	t.URL = url
	return nil
}

// Activate makes the tab active.
func (w *Window) Activate(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.findLocked(id) == nil {
		return fmt.Errorf("activate: no tab %d", id)
	}
	w.active = id
	return nil
}

// Active returns a copy of the active tab.
func (w *Window) Active() (Tab, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.findLocked(w.active)
	if t == nil {
		return Tab{}, false
	}
	return copyTab(t), true
}

// Tabs returns copies of all tabs in order.
func (w *Window) Tabs() []Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Tab, 0, len(w.tabs))
	for _, t := range w.tabs {
		out = append(out, copyTab(t))
	}
	return out
}

func (w *Window) findLocked(id int) *Tab {
	if id == 0 {
		return nil
	}
	for _, t := range w.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (w *Window) indexLocked(id int) int {
	for i, t := range w.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func copyTab(t *Tab) Tab {
	c := *t
	c.History = append([]string(nil), t.History...)
	return c
}

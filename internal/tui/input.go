package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
)

// Default cell size in pixels.
const (
	DefaultScaleX = 10
	DefaultScaleY = 20
)

var buttonMasks = []struct {
	mask   tcell.ButtonMask
	button arbiter.Button
}{
	{tcell.ButtonPrimary, arbiter.ButtonLeft},
	{tcell.ButtonMiddle, arbiter.ButtonMiddle},
	{tcell.ButtonSecondary, arbiter.ButtonRight},
}

// mouseTracker turns tcell's button-state mouse reports into discrete
// press, move and release events.
type mouseTracker struct {
	scaleX, scaleY int
	buttons        tcell.ButtonMask
	x, y           int
	seen           bool
}

func newMouseTracker(scaleX, scaleY int) *mouseTracker {
	return &mouseTracker{scaleX: scaleX, scaleY: scaleY}
}

// point converts a cell position to pixels.
func (m *mouseTracker) point(x, y int) gesture.Point {
	return gesture.Point{X: float64(x * m.scaleX), Y: float64(y * m.scaleY)}
}

// cell converts a pixel position back to a cell.
func (m *mouseTracker) cell(p gesture.Point) (int, int) {
	return int(p.X) / m.scaleX, int(p.Y) / m.scaleY
}

// translate returns the arbiter events for one mouse report. Releases
// come before presses when both change in the same report. Wheel bits
// are ignored.
func (m *mouseTracker) translate(x, y int, buttons tcell.ButtonMask, at time.Time) []arbiter.Event {
	var events []arbiter.Event
	p := m.point(x, y)
	moved := !m.seen || x != m.x || y != m.y

	prev := m.buttons
	var cur tcell.ButtonMask
	for _, bm := range buttonMasks {
		cur |= buttons & bm.mask
	}

	if cur == prev {
		if moved {
			events = append(events, arbiter.Move{Point: p, Time: at})
		}
	} else {
		for _, bm := range buttonMasks {
			if prev&bm.mask != 0 && cur&bm.mask == 0 {
				events = append(events, arbiter.Release{Button: bm.button, Point: p, Time: at})
			}
		}
		if moved && prev != 0 && cur&prev != 0 {
			events = append(events, arbiter.Move{Point: p, Time: at})
		}
		for _, bm := range buttonMasks {
			if cur&bm.mask != 0 && prev&bm.mask == 0 {
				events = append(events, arbiter.Press{Button: bm.button, Point: p, Time: at})
			}
		}
	}

	m.buttons = cur
	m.x, m.y = x, y
	m.seen = true
	return events
}

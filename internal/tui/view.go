package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/rightstroke/internal/trail"
)

const (
	trailRune = '•'
	hint      = "right-drag to gesture  g toggle  q quit"
)

var (
	styleDefault = tcell.StyleDefault
	styleTab     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleActive  = tcell.StyleDefault.Reverse(true).Bold(true)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.GetColor(trail.StrokeColor))
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleToast   = tcell.StyleDefault.Reverse(true).Bold(true)
	styleMenu    = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
)

// menuItems is what the stand-in native menu lists.
var menuItems = []string{"Back", "Reload", "Save as...", "Inspect"}

// draw renders the whole screen from the current view.
func (a *App) draw() {
	v := a.snapshot()
	s := a.screen
	s.Clear()
	w, h := s.Size()

	a.drawTabs(w)

	for _, p := range v.trail {
		x, y := a.mouse.cell(p)
		if x >= 0 && x < w && y > 0 && y < h-1 {
			s.SetContent(x, y, trailRune, nil, styleTrail)
		}
	}

	if v.menu != nil {
		drawMenu(s, v.menu.x, v.menu.y, w, h)
	}

	drawStatus(s, v, w, h)
	s.Show()
}

// drawTabs writes the tab row on line 0, the active tab highlighted.
func (a *App) drawTabs(w int) {
	x := 0
	active, _ := a.window.Active()
	for _, t := range a.window.Tabs() {
		style := styleTab
		if t.ID == active.ID {
			style = styleActive
		}
		x = putString(a.screen, x, 0, w, fmt.Sprintf(" %d %s ", t.ID, t.URL), style)
		x = putString(a.screen, x, 0, w, " ", styleDefault)
	}
	if x == 0 {
		putString(a.screen, 0, 0, w, " no tabs ", styleTab)
	}
}

// drawStatus fills the bottom line with the toast, or the last status
// and the key hint.
func drawStatus(s tcell.Screen, v view, w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, styleStatus)
	}
	if v.toast != "" {
		putString(s, 1, y, w, v.toast, styleToast)
		return
	}

	left := v.status
	if !v.settings.GesturesEnabled {
		left = "gestures off"
	}
	putString(s, 1, y, w, left, styleStatus)
	if start := w - len(hint) - 1; start > len(left)+2 {
		putString(s, start, y, w, hint, styleStatus)
	}
}

// drawMenu draws a box listing menuItems with its corner at x, y, moved
// left or up when it would leave the screen.
func drawMenu(s tcell.Screen, x, y, w, h int) {
	width := 0
	for _, item := range menuItems {
		width = max(width, len(item))
	}
	width += 2
	height := len(menuItems)

	if x+width > w {
		x = max(0, w-width)
	}
	if y+height > h-1 {
		y = max(1, h-1-height)
	}
	for i, item := range menuItems {
		row := y + i
		for col := x; col < x+width && col < w; col++ {
			s.SetContent(col, row, ' ', nil, styleMenu)
		}
		putString(s, x+1, row, w, item, styleMenu)
	}
}

// putString writes str from x and returns the column after it. Nothing
// is written at or past limit.
func putString(s tcell.Screen, x, y, limit int, str string, style tcell.Style) int {
	for _, r := range str {
		if x >= limit {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

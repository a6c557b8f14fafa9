// Package trail renders the in-progress gesture stroke as SVG path data.
package trail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/rightstroke/internal/gesture"
)

// Stroke style of the overlay.
const (
	StrokeColor = "#9b59b6"
	StrokeWidth = 3
)

// Sink receives the current path data. An empty string means the trail
// was removed.
type Sink func(d string)

// Path is an arbiter.Trail that turns the sampled points into SVG path
// data and hands it to a Sink.
//
// Update before Begin and End without a trail are no-ops. A Path is driven
// from the engine goroutine and is not safe for concurrent use.
type Path struct {
	sink   Sink
	active bool
}

// NewPath creates a Path writing to sink.
func NewPath(sink Sink) *Path {
	if sink == nil {
		sink = func(string) {}
	}
	return &Path{sink: sink}
}

// Begin creates the trail if absent.
func (p *Path) Begin() {
	p.active = true
}

// Update redraws the trail through points.
func (p *Path) Update(points []gesture.Point) {
	if !p.active || len(points) == 0 {
		return
	}
	p.sink(PathData(points))
}

// End removes the trail.
func (p *Path) End() {
	if !p.active {
		return
	}
	p.active = false
	p.sink("")
}

// Active reports whether a trail is shown.
func (p *Path) Active() bool {
	return p.active
}

// PathData returns the SVG path "M x0 y0 L x1 y1 ..." through points.
func PathData(points []gesture.Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pt := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(pt.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(pt.Y))
	}
	return b.String()
}

// Element wraps path data in a styled SVG path element.
func Element(d string) string {
	return fmt.Sprintf(`<path d=%q stroke=%q stroke-width="%d" fill="none" stroke-linecap="round" stroke-linejoin="round"/>`,
		d, StrokeColor, StrokeWidth)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package tui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
)

func TestMouseTracker_PressDragRelease(t *testing.T) {
	m := newMouseTracker(DefaultScaleX, DefaultScaleY)
	at := time.Unix(100, 0)

	events := m.translate(3, 4, tcell.ButtonSecondary, at)
	require.Len(t, events, 1)
	assert.Equal(t, arbiter.Press{Button: arbiter.ButtonRight, Point: gesture.Point{X: 30, Y: 80}, Time: at}, events[0])

	events = m.translate(3, 6, tcell.ButtonSecondary, at)
	require.Len(t, events, 1)
	assert.Equal(t, arbiter.Move{Point: gesture.Point{X: 30, Y: 120}, Time: at}, events[0])

	events = m.translate(3, 6, tcell.ButtonNone, at)
	require.Len(t, events, 1)
	assert.Equal(t, arbiter.Release{Button: arbiter.ButtonRight, Point: gesture.Point{X: 30, Y: 120}, Time: at}, events[0])
}

func TestMouseTracker_SamePositionNoMove(t *testing.T) {
	m := newMouseTracker(DefaultScaleX, DefaultScaleY)
	at := time.Unix(100, 0)

	m.translate(1, 1, tcell.ButtonNone, at)
	assert.Empty(t, m.translate(1, 1, tcell.ButtonNone, at))
}

func TestMouseTracker_ButtonMapping(t *testing.T) {
	tests := []struct {
		name   string
		mask   tcell.ButtonMask
		button arbiter.Button
	}{
		{"primary", tcell.ButtonPrimary, arbiter.ButtonLeft},
		{"middle", tcell.ButtonMiddle, arbiter.ButtonMiddle},
		{"secondary", tcell.ButtonSecondary, arbiter.ButtonRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMouseTracker(1, 1)
			events := m.translate(0, 0, tt.mask, time.Time{})
			require.Len(t, events, 1)
			press, ok := events[0].(arbiter.Press)
			require.True(t, ok, "expected Press, got %T", events[0])
			assert.Equal(t, tt.button, press.Button)
		})
	}
}

func TestMouseTracker_IgnoresWheel(t *testing.T) {
	m := newMouseTracker(1, 1)
	m.translate(0, 0, tcell.ButtonNone, time.Time{})
	assert.Empty(t, m.translate(0, 0, tcell.WheelUp, time.Time{}))
}

func TestMouseTracker_ReleaseBeforePress(t *testing.T) {
	m := newMouseTracker(1, 1)
	m.translate(0, 0, tcell.ButtonPrimary, time.Time{})

	events := m.translate(0, 0, tcell.ButtonSecondary, time.Time{})
	require.Len(t, events, 2)
	assert.IsType(t, arbiter.Release{}, events[0])
	assert.Equal(t, arbiter.ButtonLeft, events[0].(arbiter.Release).Button)
	assert.IsType(t, arbiter.Press{}, events[1])
	assert.Equal(t, arbiter.ButtonRight, events[1].(arbiter.Press).Button)
}

func TestMouseTracker_Cell(t *testing.T) {
	m := newMouseTracker(DefaultScaleX, DefaultScaleY)
	x, y := m.cell(gesture.Point{X: 125, Y: 61})
	assert.Equal(t, 12, x)
	assert.Equal(t, 3, y)
}

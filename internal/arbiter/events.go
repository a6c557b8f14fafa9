package arbiter

import (
	"time"

	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
)

// Button identifies a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary button.
	ButtonLeft
	// ButtonMiddle is the wheel button.
	ButtonMiddle
	// ButtonRight is the secondary button; the only one that draws gestures.
	ButtonRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ButtonFromDOM converts a DOM MouseEvent.button code (0 left, 1 middle,
// 2 right) to a Button.
func ButtonFromDOM(code int) Button {
	switch code {
	case 0:
		return ButtonLeft
	case 1:
		return ButtonMiddle
	case 2:
		return ButtonRight
	default:
		return ButtonNone
	}
}

// Event is an input to the Arbiter.
type Event interface {
	eventMarker()
}

// Press is a button going down.
type Press struct {
	Button Button
	Point  gesture.Point
	Time   time.Time
}

// Move is a pointer movement.
type Move struct {
	Point gesture.Point
	Time  time.Time
}

// Release is a button going up.
type Release struct {
	Button Button
	Point  gesture.Point
	Time   time.Time
}

// ContextMenu is the platform asking whether to show its context menu.
type ContextMenu struct {
	Time time.Time
}

// TimerKind distinguishes the Arbiter's deferred callbacks.
type TimerKind uint8

const (
	// TimerLongPress fires when the right button has been held long enough
	// to count as a gesture without movement.
	TimerLongPress TimerKind = iota + 1
	// TimerMenuReset clears menu suppression after a suppressed contextmenu.
	TimerMenuReset
)

// String returns a string representation of the timer kind.
func (k TimerKind) String() string {
	switch k {
	case TimerLongPress:
		return "long_press"
	case TimerMenuReset:
		return "menu_reset"
	default:
		return "unknown"
	}
}

// TimerFired is delivered by the Scheduler when a timer expires.
// Token is the identity the Arbiter attached when scheduling it.
type TimerFired struct {
	Kind  TimerKind
	Token int64
}

// SettingsChanged carries a new settings snapshot.
type SettingsChanged struct {
	Settings settings.Settings
}

func (Press) eventMarker()           {}
func (Move) eventMarker()            {}
func (Release) eventMarker()         {}
func (ContextMenu) eventMarker()     {}
func (TimerFired) eventMarker()      {}
func (SettingsChanged) eventMarker() {}

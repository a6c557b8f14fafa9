package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/engine"
	"github.com/roach88/rightstroke/internal/executor"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
	"github.com/roach88/rightstroke/internal/trail"
)

// Message types.
const (
	TypePress       = "press"
	TypeMove        = "move"
	TypeRelease     = "release"
	TypeContextMenu = "contextmenu"
	TypeSettings    = "settings"
	TypeState       = "state"

	TypeHello     = "hello"
	TypeVerdict   = "verdict"
	TypeGesture   = "gesture"
	TypeTrail     = "trail"
	TypeToast     = "toast"
	TypeExecute   = "execute"
	TypeExecution = "execution"
	TypeError     = "error"
)

// Error codes sent in error messages.
const (
	ErrCodeParse          = "PARSE_ERROR"
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeUnknownType    = "UNKNOWN_TYPE"
	ErrCodeStopped        = "STOPPED"
)

// InputMessage is a message from the client.
type InputMessage struct {
	Type     string             `json:"type"`
	ID       int64              `json:"id,omitempty"`
	Button   *int               `json:"button,omitempty"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	T        int64              `json:"t,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`
}

// HelloMessage is the first message on every connection.
type HelloMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

// VerdictMessage answers a contextmenu.
type VerdictMessage struct {
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	Verdict string `json:"verdict"`
}

// GestureMessage reports a completed cycle.
type GestureMessage struct {
	Type       string   `json:"type"`
	Cycle      int64    `json:"cycle"`
	Outcome    string   `json:"outcome"`
	Directions []string `json:"directions"`
	Pattern    string   `json:"pattern"`
	Action     string   `json:"action,omitempty"`
	Matched    bool     `json:"matched"`
	Suppressed bool     `json:"suppressed"`
}

// TrailMessage carries the current stroke path. An empty D removes the
// trail.
type TrailMessage struct {
	Type   string `json:"type"`
	D      string `json:"d"`
	Stroke string `json:"stroke"`
	Width  int    `json:"width"`
}

// ToastMessage shows, or with empty Text clears, the toast.
type ToastMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExecuteMessage asks the client to carry out an action.
type ExecuteMessage struct {
	Type   string `json:"type"`
	Cycle  int64  `json:"cycle"`
	Action string `json:"action"`
}

// ExecutionMessage reports how an action ended.
type ExecutionMessage struct {
	Type    string `json:"type"`
	Cycle   int64  `json:"cycle"`
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// StateMessage is a snapshot of the connection's Arbiter.
type StateMessage struct {
	Type          string            `json:"type"`
	ID            int64             `json:"id"`
	Mode          string            `json:"mode"`
	Cycle         int64             `json:"cycle"`
	Points        int               `json:"points"`
	AllowNextMenu bool              `json:"allowNextMenu"`
	SuppressMenu  bool              `json:"suppressMenu"`
	Settings      settings.Settings `json:"settings"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseInput decodes a client message.
func ParseInput(data []byte) (InputMessage, error) {
	var m InputMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return InputMessage{}, err
	}
	return m, nil
}

// Event converts an input message to an arbiter event. now supplies the
// event time when the client sent none.
func (m InputMessage) Event(now func() time.Time) (arbiter.Event, error) {
	at := now()
	if m.T > 0 {
		at = time.UnixMilli(m.T)
	}
	p := gesture.Point{X: m.X, Y: m.Y}

	switch m.Type {
	case TypePress, TypeRelease:
		if m.Button == nil {
			return nil, fmt.Errorf("%s requires a button", m.Type)
		}
		b := arbiter.ButtonFromDOM(*m.Button)
		if m.Type == TypePress {
			return arbiter.Press{Button: b, Point: p, Time: at}, nil
		}
		return arbiter.Release{Button: b, Point: p, Time: at}, nil
	case TypeMove:
		return arbiter.Move{Point: p, Time: at}, nil
	case TypeContextMenu:
		return arbiter.ContextMenu{Time: at}, nil
	case TypeSettings:
		if m.Settings == nil {
			return nil, fmt.Errorf("settings message requires settings")
		}
		return arbiter.SettingsChanged{Settings: *m.Settings}, nil
	case "":
		return nil, fmt.Errorf("type is required")
	default:
		return nil, &unknownTypeError{typ: m.Type}
	}
}

type unknownTypeError struct {
	typ string
}

func (e *unknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.typ)
}

func gestureMessage(c arbiter.Cycle) GestureMessage {
	rec := engine.CycleRecord("", 0, c)
	return GestureMessage{
		Type:       TypeGesture,
		Cycle:      c.ID,
		Outcome:    rec.Outcome,
		Directions: rec.Directions,
		Pattern:    rec.Pattern,
		Action:     rec.Action,
		Matched:    rec.Matched,
		Suppressed: rec.Suppressed,
	}
}

func executionMessage(r executor.Result) ExecutionMessage {
	m := ExecutionMessage{
		Type:   TypeExecution,
		Cycle:  r.Cycle,
		Action: string(r.Action),
		OK:     r.Err == nil,
	}
	if r.Err != nil {
		m.Code = string(executor.CodeOf(r.Err))
		m.Message = r.Err.Error()
	}
	return m
}

func trailMessage(d string) TrailMessage {
	return TrailMessage{Type: TypeTrail, D: d, Stroke: trail.StrokeColor, Width: trail.StrokeWidth}
}

package harness

import "github.com/roach88/rightstroke/internal/settings"

// Trace event types.
const (
	EventPress       = "press"
	EventMove        = "move"
	EventRelease     = "release"
	EventContextMenu = "contextmenu"
	EventWait        = "wait"
	EventTimer       = "timer"
	EventSettings    = "settings"
)

// TraceEvent records one event handed to the Arbiter and what it did.
// Timers fired during a wait carry the wait's step index.
type TraceEvent struct {
	Step     int                `json:"step"`
	At       int64              `json:"at_ms"` // milliseconds since scenario start
	Type     string             `json:"type"`
	Button   string             `json:"button,omitempty"`
	X        *float64           `json:"x,omitempty"`
	Y        *float64           `json:"y,omitempty"`
	Timer    string             `json:"timer,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`

	// Mode is the Arbiter mode after the event.
	Mode    string      `json:"mode"`
	Verdict string      `json:"verdict,omitempty"`
	Cycle   *CycleTrace `json:"cycle,omitempty"`
	Aborted *CycleTrace `json:"aborted,omitempty"`
}

// CycleTrace summarizes a cycle completed by a trace event.
type CycleTrace struct {
	ID         int64    `json:"id"`
	Outcome    string   `json:"outcome"`
	Points     int      `json:"points"`
	Directions []string `json:"directions,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Action     string   `json:"action,omitempty"`
	Suppressed bool     `json:"suppressed"`
	Executed   bool     `json:"executed"`
	Duration   int64    `json:"duration_ms"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Trace contains every event handed to the Arbiter, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Executed lists the actions handed to the executor, in order.
	Executed []string `json:"executed"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Executed: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

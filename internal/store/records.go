package store

import "time"

// CycleRecord is one finished interaction cycle.
type CycleRecord struct {
	Session    string    `json:"session"`
	CycleID    int64     `json:"cycle_id"`
	Seq        int64     `json:"seq"`
	Outcome    string    `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Points     int       `json:"points"`
	Directions []string  `json:"directions"`
	Pattern    string    `json:"pattern,omitempty"`
	Action     string    `json:"action,omitempty"`
	Matched    bool      `json:"matched"`
	Suppressed bool      `json:"suppressed"`
}

// ExecutionRecord is the result of one executed action.
type ExecutionRecord struct {
	ID      int64  `json:"id"`
	Session string `json:"session"`
	CycleID int64  `json:"cycle_id"`
	Seq     int64  `json:"seq"`
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionSummary aggregates the cycles of one session.
type SessionSummary struct {
	Session    string `json:"session"`
	Cycles     int    `json:"cycles"`
	Gestures   int    `json:"gestures"`
	Matched    int    `json:"matched"`
	Executions int    `json:"executions"`
	Failures   int    `json:"failures"`
	FirstSeq   int64  `json:"first_seq"`
	LastSeq    int64  `json:"last_seq"`
}

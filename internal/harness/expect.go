package harness

import (
	"fmt"
	"slices"
)

// Mismatch is one failed expectation.
type Mismatch struct {
	Step     int
	Kind     string
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (m *Mismatch) Error() string {
	return fmt.Sprintf("step %d (%s): %s: expected %s, got %s", m.Step, m.Kind, m.Field, m.Expected, m.Actual)
}

// check compares the step's trace event with its expect clause.
func (h *Harness) check(index int, ev TraceEvent, e *Expect) []*Mismatch {
	var out []*Mismatch
	fail := func(field, expected, actual string) {
		out = append(out, &Mismatch{Step: index, Kind: ev.Type, Field: field, Expected: expected, Actual: actual})
	}

	if e.Mode != "" && e.Mode != ev.Mode {
		fail("mode", e.Mode, ev.Mode)
	}

	if e.Menu != "" && e.Menu != ev.Verdict {
		fail("menu", e.Menu, orNone(ev.Verdict))
	}

	c := ev.Cycle
	if e.Outcome != "" {
		actual := expectNone
		if c != nil {
			actual = c.Outcome
		}
		if e.Outcome != actual {
			fail("outcome", e.Outcome, actual)
		}
	}

	if e.Action != "" {
		actual := expectNone
		if c != nil && c.Action != "" {
			actual = c.Action
		}
		if e.Action != actual {
			fail("action", e.Action, actual)
		}
	}

	if e.Directions != nil {
		var actual []string
		if c != nil {
			actual = c.Directions
		}
		if !slices.Equal(e.Directions, actual) {
			fail("directions", fmt.Sprint(e.Directions), fmt.Sprint(actual))
		}
	}

	if e.Pattern != nil {
		actual := ""
		if c != nil {
			actual = c.Pattern
		}
		if *e.Pattern != actual {
			fail("pattern", fmt.Sprintf("%q", *e.Pattern), fmt.Sprintf("%q", actual))
		}
	}

	return out
}

func orNone(s string) string {
	if s == "" {
		return expectNone
	}
	return s
}

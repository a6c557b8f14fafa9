package gesture

import "fmt"

// Action identifies a navigation command. The string values are stable and
// shared with executors, the interaction log and the wire protocol.
type Action string

const (
	ActionReload  Action = "reload"
	ActionClose   Action = "close"
	ActionNextTab Action = "nextTab"
	ActionPrevTab Action = "prevTab"
	ActionBack    Action = "back"
)

// Actions lists every valid action.
var Actions = []Action{ActionReload, ActionClose, ActionNextTab, ActionPrevTab, ActionBack}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAction converts an action name to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Label is the short human-readable name shown to the user.
func (a Action) Label() string {
	switch a {
	case ActionReload:
		return "Reload"
	case ActionClose:
		return "Close tab"
	case ActionNextTab:
		return "Next tab"
	case ActionPrevTab:
		return "Previous tab"
	case ActionBack:
		return "Back"
	default:
		return string(a)
	}
}

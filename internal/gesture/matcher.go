package gesture

import "strings"

// rule maps a pattern to an action.
//
// exact patterns must equal the key; a prefix rule also matches longer
// sequences that start with it, so stray trailing legs after a recognized
// two-leg gesture still count.
type rule struct {
	action Action
	exact  []string
	prefix string
}

// rules are evaluated in declaration order; the first match wins.
// Single-leg gestures only ever match exactly.
var rules = []rule{
	{action: ActionBack, exact: []string{"left"}},
	{action: ActionReload, exact: []string{"up-down", "down-up"}},
	{action: ActionClose, prefix: "down-right"},
	{action: ActionNextTab, prefix: "up-right"},
	{action: ActionPrevTab, prefix: "up-left"},
}

// matches reports whether the rule accepts the pattern key.
func (r rule) matches(pattern string) bool {
	for _, e := range r.exact {
		if pattern == e {
			return true
		}
	}
	if r.prefix == "" {
		return false
	}
	return pattern == r.prefix || strings.HasPrefix(pattern, r.prefix+"-")
}

// Match returns the action for a direction sequence.
// Empty sequences never match.
func Match(seq Sequence) (Action, bool) {
	if len(seq) == 0 {
		return "", false
	}
	return MatchPattern(seq.Pattern())
}

// MatchPattern returns the action for a hyphen-joined pattern key.
func MatchPattern(pattern string) (Action, bool) {
	if pattern == "" {
		return "", false
	}
	for _, r := range rules {
		if r.matches(pattern) {
			return r.action, true
		}
	}
	return "", false
}

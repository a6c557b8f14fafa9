// Package executor carries out recognized gesture actions.
//
// TabExecutor acts on an in-memory Window of tabs: reload, close, switch to
// the next or previous tab (wrapping at both ends) and go back in history.
// Async wraps any executor so that action execution never blocks the
// gesture engine; failures are logged and reported, never retried.
//
// All failures are *ActionError values carrying a Code:
//
//	INVALID_TAB     no active tab to act on
//	UNKNOWN_ACTION  the action is not one of the five gesture actions
//	NO_HISTORY      back requested on a tab without history
//	UNAVAILABLE     no action channel is present
package executor

// Package harness runs gesture scenarios against the Arbiter.
//
// A scenario is a scripted sequence of pointer events, contextmenu
// requests, waits and settings changes, with expectations attached to the
// steps. The harness replays it on a manual clock so timers (long press,
// menu reset) fire exactly when a wait step passes their due time.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: down_right_close
//	description: "Down then right closes the tab and hides the menu"
//	settings:                  # optional initial settings
//	  gesturesEnabled: true
//	steps:
//	  - press: { x: 100, y: 100 }           # button defaults to right
//	  - move: { x: 100, y: 160 }
//	  - move: { x: 160, y: 160 }
//	  - release: { x: 160, y: 160 }
//	    expect:
//	      outcome: gesture
//	      directions: [down, right]
//	      pattern: down-right
//	      action: close
//	  - contextmenu: true
//	    expect: { menu: suppressed }
//	  - wait: 100ms
//	  - settings: { gesturesEnabled: false }
//	executed: [close]
//
// Exactly one of press, move, release, contextmenu, wait or settings must be
// set on each step.
//
// # Expectations
//
// The expect clause is checked after the step has been applied:
//
//   - mode: Arbiter mode after the step (idle, pressed, gesture)
//   - outcome: outcome of the cycle the step completed, or "none"
//   - directions, pattern: recognition result of the completed cycle
//   - action: recognized action, or "none" when nothing matched
//   - menu: verdict of a contextmenu step (shown, suppressed)
//
// The scenario-level executed list is compared with every action handed to
// the executor, in order.
//
// # Deterministic Testing
//
// Each run starts the clock at testutil.Epoch, uses a ManualScheduler and a
// RecordingExecutor, and discards logs, so traces are identical across runs
// and can be compared against golden files with RunWithGolden.
package harness

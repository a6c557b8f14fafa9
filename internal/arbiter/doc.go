// Package arbiter decides what a right-button interaction means.
//
// A right press can be the start of three different things: an ordinary
// right-click (the context menu should appear), a long hold, or a drawn
// gesture. The Arbiter watches press, move, release, contextmenu and timer
// events and settles which one it was, using only timing and movement.
//
// STATES:
//
//	Idle        no right button held
//	Pressed     right button down, nothing decided yet
//	GestureMode movement seen, or the long-press timer fired
//
// plus a one-shot "allow next menu" modifier set by a double right-click.
//
// TRANSITIONS:
//
//	Idle    --press(right, enabled)--> Pressed      arms the long-press timer
//	Idle    --press within 300ms----->  Idle         allow-next-menu, no session
//	Pressed --move beyond tolerance-->  GestureMode  trail begins
//	Pressed --long-press timer------->  GestureMode  trail begins
//	Pressed --release---------------->  Idle         short click, menu shown
//	GestureMode --release------------>  Idle         recognize, execute on match,
//	                                                 menu suppressed either way
//
// Browsers deliver contextmenu separately from mouseup, so the verdict taken
// at release is stored and consulted when the ContextMenu event arrives. A
// suppressed menu arms a short reset so a later unrelated contextmenu is not
// blocked forever.
//
// CONCURRENCY:
//
// An Arbiter is not safe for concurrent use. It is meant to be driven from a
// single goroutine (see internal/engine). Timers are requested through a
// Scheduler and come back as TimerFired events on that same goroutine; each
// timer carries the identity of the cycle that armed it, and a timer from a
// superseded cycle is ignored.
package arbiter

// Package engine runs the gesture Arbiter behind a single-writer event loop.
//
// The Arbiter is not safe for concurrent use, but its inputs come from many
// goroutines: pointer events from a network connection or terminal, wall
// clock timers, settings file watchers and the action executor. The engine
// funnels all of them through one FIFO queue and applies them in a single
// goroutine.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
//  1. Producers call Enqueue or Submit (any goroutine)
//  2. Engine.Run() dequeues items one at a time
//  3. Pointer, timer and settings items go to Arbiter.Handle
//  4. A completed cycle is stamped with the next seq and written to the store
//  5. Actions run on the async executor; their results come back through
//     the queue and are written to the store in turn
//
// Timers:
// WallScheduler turns the Arbiter's timer requests into time.AfterFunc
// callbacks that enqueue TimerFired. A timer that fires after its cycle was
// superseded still reaches the Arbiter, which ignores it by token.
//
// Settings:
// Run loads the settings provider asynchronously and subscribes to
// changes. Until the first load completes the Arbiter runs with defaults
// (gestures enabled); a failed load is logged and the defaults stay.
package engine

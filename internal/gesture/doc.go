// Package gesture turns a sampled pointer stroke into a navigation action.
//
// Recognition runs in three stages:
//
//  1. Sampling: the caller collects every pointer position observed while the
//     right button is held (a []Point, in screen pixels).
//  2. Quantization: Directions reduces the polyline to a coarse compass
//     Sequence. A leg only counts once the pointer has travelled MinDistance
//     pixels from the last direction change, so jitter and diagonals collapse
//     to the dominant axis.
//  3. Matching: Match looks the hyphen-joined pattern up in a fixed rule list,
//     evaluated in declaration order (first match wins).
//
// Example:
//
//	rec := gesture.Recognizer{MinDistance: gesture.DefaultMinDistance}
//	r := rec.Recognize([]gesture.Point{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}})
//	// r.Pattern == "down-right", r.Action == gesture.ActionClose
//
// Everything in this package is pure and allocation-light; it holds no state
// between calls and is safe for concurrent use.
package gesture

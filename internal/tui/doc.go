// Package tui is a terminal front end for the gesture engine.
//
// The terminal stands in for a browser page: mouse input in cells is
// scaled to pixels and fed to an engine.Engine, the stroke is drawn as
// dots, toasts appear in the status line and actions run against an
// in-memory tab window shown on the top line.
//
// Terminals have no native context menu, so one is synthesized after
// every right-button release and drawn as a small box when the engine
// lets it through.
//
// Keys:
//
//	q, Esc, Ctrl-C  quit
//	g               toggle gestures on and off
package tui

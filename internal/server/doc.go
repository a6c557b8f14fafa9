// Package server exposes the gesture engine over a websocket.
//
// A client (typically a browser content script) connects to /ws and
// streams its raw input as JSON text messages. Every connection owns its
// own Engine, so strokes from different clients never mix.
//
// # Client messages
//
//	{"type":"press","button":2,"x":100,"y":100,"t":1735689600000}
//	{"type":"move","x":100,"y":160,"t":1735689600016}
//	{"type":"release","button":2,"x":160,"y":160,"t":1735689600040}
//	{"type":"contextmenu","id":7}
//	{"type":"settings","settings":{"gesturesEnabled":false,"debugLogging":false}}
//	{"type":"state","id":8}
//
// button uses DOM MouseEvent.button codes (0 left, 1 middle, 2 right) and
// is required on press and release. t is the client timestamp in unix
// milliseconds; when absent the server's receive time is used.
//
// # Server messages
//
//	{"type":"hello","session":"..."}
//	{"type":"verdict","id":7,"verdict":"suppressed"}
//	{"type":"gesture","cycle":1,"outcome":"gesture","directions":["down","right"],...}
//	{"type":"trail","d":"M 100 100 L 100 160","stroke":"#9b59b6","width":3}
//	{"type":"toast","text":"Close tab"}
//	{"type":"execute","cycle":1,"action":"close"}
//	{"type":"execution","cycle":1,"action":"close","ok":true}
//	{"type":"state","id":8,"mode":"idle",...}
//	{"type":"error","code":"INVALID_MESSAGE","message":"..."}
//
// A contextmenu is answered with exactly one verdict carrying the same id.
// Without an executor factory, recognized actions are sent back to the
// client as execute messages for it to carry out.
package server

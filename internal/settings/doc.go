// Package settings provides the user-facing switches read by the gesture
// arbiter: whether gestures are enabled and whether per-event debug logging
// is on.
//
// Settings are owned outside the arbiter. A Provider loads them (possibly
// slowly) and pushes later changes to subscribers. Until a provider answers,
// callers use Defaults(): gestures enabled, debug logging off.
//
// Three providers are available:
//
//   - Static: fixed values, for tests and one-shot commands.
//   - Memory: mutable in-process values; Set notifies subscribers.
//   - File: a CUE document validated against an embedded schema and watched
//     with fsnotify, so edits on disk reach subscribers without a restart.
//
// A settings file looks like:
//
//	gesturesEnabled: true
//	debugLogging:    false
//
// Either field may be omitted; omitted fields take their schema default.
package settings

package engine

import "errors"

// ErrStopped is returned by Submit and State once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

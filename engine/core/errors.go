package core

import (
	"errors"
)

var (
	ErrStopwatchNotStarted   = errors.New("stopwatch stopped before it was started")
	ErrRuntimeNotInitialized = errors.New("runtime must be initialized before running")
)

package engine

// App is the user-supplied application driven by the Runtime. The runtime
// calls FnInitialize once before the loop, FnUpdate every frame with the
// clock's normalized delta and FnShutdown on teardown. FnInitialize and
// FnShutdown may be nil; FnUpdate must be set.
type App struct {
	// Runtime is populated by New so hooks can reach the clock, the
	// metrics, the events and the active configuration.
	Runtime *Runtime
	// State is free for the application to use.
	State interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Shutdown func() error

package core

import "time"

// TimeSource supplies the two time primitives the clock depends on: a
// monotonic millisecond timer for frame deltas and the stopwatch, and the
// wall clock for average FPS. Injecting one keeps frame timing deterministic
// under test.
type TimeSource interface {
	// NowMS returns monotonic milliseconds since an arbitrary fixed origin.
	NowMS() float64
	// Now returns the current wall-clock time.
	Now() time.Time
}

type systemTime struct {
	origin time.Time
}

// SystemTime returns the default TimeSource backed by the standard library.
// The millisecond timer counts from the moment this function was called and
// rides on the runtime's monotonic clock reading.
func SystemTime() TimeSource {
	return &systemTime{origin: time.Now()}
}

func (s *systemTime) NowMS() float64 {
	return float64(time.Since(s.origin)) / float64(time.Millisecond)
}

func (s *systemTime) Now() time.Time {
	return time.Now()
}

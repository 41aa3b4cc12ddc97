package math

import "golang.org/x/exp/constraints"

const (
	/** @brief The multiplier to convert seconds to milliseconds. */
	K_SEC_TO_MS_MULTIPLIER float64 = 1000.0
	/** @brief The multiplier to convert milliseconds to seconds. */
	K_MS_TO_SEC_MULTIPLIER float64 = 0.001
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

package core

import "github.com/spaghettifunk/tempo/engine/math"

const AVG_COUNT uint8 = 30

// Metrics measures the run loop from the outside: a rolling average of the
// frame cost in milliseconds over the last AVG_COUNT frames and the number
// of loop iterations completed in the last full second. It deliberately
// stays separate from the Clock, which reports frame-derived time to the
// application.
type Metrics struct {
	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update folds one frame's elapsed seconds into the rolling statistics. The
// runtime calls this at the end of every loop iteration.
func (mt *Metrics) Update(frameElapsedTime float64) {
	// Calculate frame ms average
	frameMS := frameElapsedTime * math.K_SEC_TO_MS_MULTIPLIER
	mt.msTimes[mt.frameAVGCounter] = frameMS
	if mt.frameAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += mt.msTimes[i]
		}
		mt.msAvg = sum / float64(AVG_COUNT)
	}
	mt.frameAVGCounter++
	mt.frameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	mt.accumulatedFrameMS += frameMS
	if mt.accumulatedFrameMS > math.K_SEC_TO_MS_MULTIPLIER {
		mt.fps = float64(mt.frames)
		mt.accumulatedFrameMS -= math.K_SEC_TO_MS_MULTIPLIER
		mt.frames = 0
	}

	// Count all Frames.
	mt.frames++
}

// FPS returns the loop iterations counted in the last completed second.
func (mt *Metrics) FPS() float64 {
	return mt.fps
}

// FrameTime returns the average frame cost in milliseconds over the last
// AVG_COUNT frames. Reports 0 until a full window has been measured.
func (mt *Metrics) FrameTime() float64 {
	return mt.msAvg
}

// Frame returns FPS and FrameTime together.
func (mt *Metrics) Frame() (float64, float64) {
	return mt.fps, mt.msAvg
}

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// manualTime is a TimeSource under full test control. advance moves the
// monotonic timer and the wall clock together.
type manualTime struct {
	ms   float64
	wall time.Time
}

func newManualTime() *manualTime {
	return &manualTime{wall: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (mt *manualTime) NowMS() float64 {
	return mt.ms
}

func (mt *manualTime) Now() time.Time {
	return mt.wall
}

func (mt *manualTime) advance(ms float64) {
	mt.ms += ms
	mt.wall = mt.wall.Add(time.Duration(ms * float64(time.Millisecond)))
}

func fireTick(es *EventSystem) {
	es.Fire(EventContext{Type: EVENT_CODE_FRAME_TICK})
}

func TestClockDefaultsBeforeFirstTick(t *testing.T) {
	c := NewClock(ClockConfig{})

	require.Zero(t, c.Delta(), "delta should be 0 before any tick")
	require.Zero(t, c.FPS(), "fps should be 0 before any tick")
	require.Zero(t, c.Frames())
}

func TestClockSeededFramesAdvanceOnTick(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	c := NewClock(ClockConfig{Frames: 100, TargetFPS: 60, Time: mt, Events: events})

	require.EqualValues(t, 100, c.Frames())

	mt.advance(16.0)
	fireTick(events)

	require.EqualValues(t, 101, c.Frames())
}

func TestClockNormalizesDeltaAgainstFrameDuration(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	// 50 FPS puts the frame duration at an exact 20ms.
	c := NewClock(ClockConfig{TargetFPS: 50, Time: mt, Events: events})

	mt.advance(20.0)
	fireTick(events)
	require.InDelta(t, 1.0, c.Delta(), 1e-9, "an on-budget frame should report 1.0")

	mt.advance(30.0)
	fireTick(events)
	require.InDelta(t, 1.5, c.Delta(), 1e-9, "a slow frame should report above 1.0")

	mt.advance(10.0)
	fireTick(events)
	require.InDelta(t, 0.5, c.Delta(), 1e-9, "a fast frame should report below 1.0")
}

func TestClockFPSAveragesOverWallClock(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	c := NewClock(ClockConfig{TargetFPS: 50, Time: mt, Events: events})

	// 100 frames over exactly two wall-clock seconds.
	for i := 0; i < 100; i++ {
		mt.advance(20.0)
		fireTick(events)
	}
	require.InDelta(t, 50.0, c.FPS(), 1e-9)

	// 100 faster frames drag the lifetime average up.
	for i := 0; i < 100; i++ {
		mt.advance(10.0)
		fireTick(events)
	}
	require.InDelta(t, 200.0/3.0, c.FPS(), 1e-9)
}

func TestClockFPSZeroWhenNoWallTimeElapsed(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})

	// Tick without moving the wall clock at all.
	fireTick(events)

	require.Zero(t, c.FPS(), "fps must degrade to 0 instead of dividing by zero")
	require.EqualValues(t, 1, c.Frames())
}

func TestClockSetFramesOverwritesCounter(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	c.SetFrames(5)
	require.EqualValues(t, 5, c.Frames())

	c.SetFrames(0)
	require.Zero(t, c.Frames())
}

func TestFramesToSpanZeroFrames(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	require.Equal(t, TimeSpan{}, c.FramesToSpan(0))
}

func TestFramesToSpanFieldsNonNegative(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	for _, frames := range []int64{0, 1, 59, 60, 61, 3600, 86400, 216000, 5184000, 123456789} {
		span := c.FramesToSpan(frames)
		require.GreaterOrEqual(t, span.Days, int64(0), "frames=%d", frames)
		require.GreaterOrEqual(t, span.Hours, int64(0), "frames=%d", frames)
		require.GreaterOrEqual(t, span.Minutes, int64(0), "frames=%d", frames)
		require.GreaterOrEqual(t, span.Seconds, int64(0), "frames=%d", frames)
		require.GreaterOrEqual(t, span.Milliseconds, int64(0), "frames=%d", frames)
	}
}

func TestFramesToSpanKnownBreakdowns(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	// A frame and a half of a second: 90 frames at 60 FPS.
	require.Equal(t, TimeSpan{Seconds: 1, Milliseconds: 30}, c.FramesToSpan(90))

	// Exactly one hour of frames.
	require.Equal(t, TimeSpan{Hours: 1}, c.FramesToSpan(216000))

	// Exactly one day of frames.
	require.Equal(t, TimeSpan{Days: 1}, c.FramesToSpan(5184000))
}

func TestFramesToSpanWrapsMinutesAtTargetRate(t *testing.T) {
	// Minutes and seconds wrap at the target frame rate, not at 60; at 30
	// FPS an hour plus 100 seconds of frames reads as 3 minutes 10 seconds.
	c := NewClock(ClockConfig{TargetFPS: 30})

	require.Equal(t, TimeSpan{Hours: 1, Minutes: 3, Seconds: 10}, c.FramesToSpan(111000))
}

func TestGameDateOneSecondOfFrames(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})
	c.SetFrames(60)

	require.InDelta(t, 1.0, c.GameDate(0, 1), 1e-9)
}

func TestGameDateAppliesEpochAndMultiplier(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})
	c.SetFrames(120)

	// Two real seconds of frames, 1440x speedup on top of the epoch.
	require.InDelta(t, 1000.0+2.0*1440.0, c.GameDate(1000, 1440), 1e-9)
}

func TestGameDateStringFormatsUTC(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	require.Equal(t, "1970-01-01 00:00:00", c.GameDateString(0, 1, ""))
	require.Equal(t, "1970-01-01", c.GameDateString(0, 1, "2006-01-02"))

	// New Year's Day 2026, one game minute per real second of frames.
	c.SetFrames(60)
	require.Equal(t, "2026-01-01 00:01:00", c.GameDateString(1767225600, 60, ""))
}

func TestStopwatchMeasuresElapsed(t *testing.T) {
	mt := newManualTime()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt})

	mt.advance(100.0)
	c.Start()
	mt.advance(12.5)

	elapsed, err := c.Stop("workload")
	require.NoError(t, err)
	require.InDelta(t, 12.5, elapsed, 1e-9)
}

func TestStopwatchRoundsToTwoDecimals(t *testing.T) {
	mt := newManualTime()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt})

	c.Start()
	mt.advance(12.345678)

	elapsed, err := c.Stop("")
	require.NoError(t, err)
	require.InDelta(t, 12.35, elapsed, 1e-9)
}

func TestStopwatchKeepsRunningAfterStop(t *testing.T) {
	mt := newManualTime()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt})

	c.Start()
	mt.advance(10.0)

	first, err := c.Stop("first")
	require.NoError(t, err)
	require.InDelta(t, 10.0, first, 1e-9)

	mt.advance(5.0)
	second, err := c.Stop("second")
	require.NoError(t, err)
	require.InDelta(t, 15.0, second, 1e-9, "a second stop measures from the same start")
}

func TestStopwatchRestartOverwritesStart(t *testing.T) {
	mt := newManualTime()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt})

	c.Start()
	mt.advance(50.0)
	c.Start()
	mt.advance(25.0)

	elapsed, err := c.Stop("")
	require.NoError(t, err)
	require.InDelta(t, 25.0, elapsed, 1e-9)
}

func TestStopwatchWithoutStartErrors(t *testing.T) {
	c := NewClock(ClockConfig{TargetFPS: 60})

	elapsed, err := c.Stop("never started")
	require.ErrorIs(t, err, ErrStopwatchNotStarted)
	require.Zero(t, elapsed)
}

func TestStopwatchImmediateStopNonNegative(t *testing.T) {
	c := NewClock(ClockConfig{})

	c.Start()
	elapsed, err := c.Stop("x")
	require.NoError(t, err)
	require.GreaterOrEqual(t, elapsed, 0.0)
}

func TestDestroyUnsubscribesAndClears(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	c := NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})

	mt.advance(16.0)
	fireTick(events)
	mt.advance(16.0)
	fireTick(events)
	require.EqualValues(t, 2, c.Frames())

	c.Destroy()

	require.Zero(t, c.Frames())
	require.Zero(t, c.Delta())
	require.Zero(t, c.FPS())

	// A tick after destruction must not touch the cleared state.
	mt.advance(16.0)
	fireTick(events)
	require.Zero(t, c.Frames())
	require.Zero(t, c.Delta())

	// Destroying again is a no-op.
	c.Destroy()
}

func TestDestroyDuringTickDispatchLeavesClockCleared(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()

	// The destroyer registers first, so the clock's own handler is still
	// pending in the same broadcast when Destroy runs.
	var victim *Clock
	events.Register(EVENT_CODE_FRAME_TICK, func(EventContext) {
		victim.Destroy()
	})
	victim = NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})
	survivor := NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})

	mt.advance(16.0)
	fireTick(events)

	require.Zero(t, victim.Frames())
	require.Zero(t, victim.Delta())
	require.Zero(t, victim.FPS())
	require.EqualValues(t, 1, survivor.Frames(), "later listeners still see the tick")
}

func TestDestroyOnlyRemovesOwnSubscription(t *testing.T) {
	mt := newManualTime()
	events := NewEventSystem()
	first := NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})
	second := NewClock(ClockConfig{TargetFPS: 60, Time: mt, Events: events})

	first.Destroy()

	mt.advance(16.0)
	fireTick(events)

	require.Zero(t, first.Frames())
	require.EqualValues(t, 1, second.Frames(), "the surviving clock keeps ticking")
}

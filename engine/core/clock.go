package core

import (
	m "math"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tempo/engine/math"
)

// DefaultTargetFPS is the frame rate assumed when a clock is constructed
// without one.
const DefaultTargetFPS float64 = 60.0

const (
	secondsPerDay  float64 = 86400.0
	secondsPerHour float64 = 3600.0
)

// defaultDateLayout formats game dates when the caller does not pass a
// layout of their own.
const defaultDateLayout = "2006-01-02 15:04:05"

// ClockConfig carries the construction parameters of a Clock. The zero value
// is usable: no seeded frames, the default target rate, system time and no
// tick subscription.
type ClockConfig struct {
	// Frames seeds the lifetime frame counter.
	Frames int64
	// TargetFPS is the frame rate the host display aims for. Zero or
	// negative values fall back to DefaultTargetFPS.
	TargetFPS float64
	// Time supplies the monotonic millisecond timer and the wall clock.
	// Nil falls back to SystemTime.
	Time TimeSource
	// Events is the dispatcher whose EVENT_CODE_FRAME_TICK advances the
	// clock. Nil leaves the clock unsubscribed; it then only moves through
	// SetFrames.
	Events *EventSystem
}

// Clock tracks frame-derived time for one logical game clock: the per-frame
// delta normalized against the target frame duration, the lifetime frame
// counter, the average FPS since construction, a manual stopwatch and the
// conversions from frames to calendar units. All mutation happens on the
// main update thread; the clock is not safe for concurrent use.
type Clock struct {
	deltaTime     float64
	lastTickMS    float64
	frameDuration float64 // ms one frame takes at the target rate, fixed
	targetFPS     float64
	frames        int64
	startedAt     time.Time
	fps           float64

	stopwatchStartMS float64
	stopwatchArmed   bool

	time       TimeSource
	events     *EventSystem
	tickToken  uuid.UUID
	subscribed bool
}

// TimeSpan is the calendar-style breakdown of a frame count.
type TimeSpan struct {
	Days         int64
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// NewClock builds a clock and, when a dispatcher is provided, subscribes it
// to the frame tick so it starts advancing immediately.
func NewClock(config ClockConfig) *Clock {
	targetFPS := config.TargetFPS
	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS
	}
	ts := config.Time
	if ts == nil {
		ts = SystemTime()
	}

	c := &Clock{
		frameDuration: math.K_SEC_TO_MS_MULTIPLIER / targetFPS,
		targetFPS:     targetFPS,
		frames:        config.Frames,
		startedAt:     ts.Now(),
		time:          ts,
		events:        config.Events,
	}
	if c.events != nil {
		c.tickToken = c.events.Register(EVENT_CODE_FRAME_TICK, c.onTick)
		c.subscribed = true
	}
	return c
}

// onTick advances the clock by one frame. Runs on the main update thread
// whenever the dispatcher fires the frame tick. Degenerate divisions report
// 0 instead of failing.
func (c *Clock) onTick(EventContext) {
	if c.frameDuration == 0 {
		// Destroyed while the tick broadcast was in flight; the cleared
		// state stays cleared.
		return
	}
	c.frames++

	now := c.time.NowMS()
	c.deltaTime = (now - c.lastTickMS) / c.frameDuration
	c.lastTickMS = now

	elapsed := c.time.Now().Sub(c.startedAt).Seconds()
	if elapsed != 0 {
		c.fps = float64(c.frames) / elapsed
	} else {
		c.fps = 0
	}
}

// Delta returns the last per-frame delta, normalized so that a frame landing
// exactly on the target duration reports 1.0. Reports 0 before the first
// tick.
func (c *Clock) Delta() float64 {
	return c.deltaTime
}

// FPS returns the average frames per second since construction. Reports 0
// before the first tick.
func (c *Clock) FPS() float64 {
	return c.fps
}

// Frames returns the lifetime frame counter.
func (c *Clock) Frames() int64 {
	return c.frames
}

// SetFrames overwrites the lifetime frame counter. Values are not validated;
// seeding a negative count is on the caller.
func (c *Clock) SetFrames(frames int64) {
	c.frames = frames
}

// Span breaks the current lifetime frame count down into calendar units.
func (c *Clock) Span() TimeSpan {
	return c.FramesToSpan(c.frames)
}

// FramesToSpan converts a frame count into days, hours, minutes, seconds and
// milliseconds. Each field is derived independently from the total, largest
// unit first.
// FIXME: minutes and seconds wrap at the target frame rate instead of 60,
// so they only read correctly when the target rate is 60.
func (c *Clock) FramesToSpan(frames int64) TimeSpan {
	seconds := float64(frames) / c.targetFPS
	return TimeSpan{
		Days:         int64(m.Floor(seconds / secondsPerDay)),
		Hours:        int64(m.Floor(m.Mod(seconds, secondsPerDay) / secondsPerHour)),
		Minutes:      int64(m.Floor(m.Mod(seconds, secondsPerHour) / c.targetFPS)),
		Seconds:      int64(m.Floor(m.Mod(seconds, c.targetFPS))),
		Milliseconds: int64(m.Floor(m.Mod(seconds*c.targetFPS, c.targetFPS))),
	}
}

// GameDate maps the accumulated frames onto an in-game timestamp: the epoch
// plus the frames scaled into seconds, sped up by the multiplier. The result
// is in Unix seconds.
func (c *Clock) GameDate(epoch, multiplier float64) float64 {
	return epoch + (float64(c.frames)/c.targetFPS)*multiplier
}

// GameDateString renders GameDate through the given reference layout in UTC.
// An empty layout falls back to "2006-01-02 15:04:05".
func (c *Clock) GameDateString(epoch, multiplier float64, layout string) string {
	if layout == "" {
		layout = defaultDateLayout
	}
	date := c.GameDate(epoch, multiplier)
	sec := m.Floor(date)
	nsec := (date - sec) * float64(time.Second)
	return time.Unix(int64(sec), int64(nsec)).UTC().Format(layout)
}

// Start arms the stopwatch. Calling it again overwrites the previous start;
// the stopwatch is independent from frame tracking.
func (c *Clock) Start() {
	c.stopwatchStartMS = c.time.NowMS()
	c.stopwatchArmed = true
}

// Stop reports the milliseconds elapsed since Start, rounded to two decimal
// places, and logs it under the given label ("Time" when empty). The
// stopwatch keeps running; stopping again measures from the same start.
// Stopping a stopwatch that was never started returns ErrStopwatchNotStarted.
func (c *Clock) Stop(label string) (float64, error) {
	if !c.stopwatchArmed {
		return 0, ErrStopwatchNotStarted
	}
	if label == "" {
		label = "Time"
	}
	elapsed := m.Round((c.time.NowMS()-c.stopwatchStartMS)*100) / 100
	LogDebug("%s = %.2f ms", label, elapsed)
	return elapsed, nil
}

// Destroy unsubscribes the clock from the frame tick and clears the derived
// state. Safe to call more than once. A destroyed clock must not be reused.
func (c *Clock) Destroy() {
	if c.subscribed {
		c.events.Unregister(EVENT_CODE_FRAME_TICK, c.tickToken)
		c.subscribed = false
	}
	c.deltaTime = 0
	c.fps = 0
	c.frames = 0
	c.lastTickMS = 0
	c.frameDuration = 0
}

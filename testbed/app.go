package testbed

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/tempo/engine"
	"github.com/spaghettifunk/tempo/engine/core"
)

// Fired whenever the simulated workload blows past its budget.
/* Context usage:
 * cost := context.Data.(float64)
 */
const EVENT_CODE_SIM_SPIKE core.EventCode = 0x101

// Frame budget the simulated workload should stay under, in milliseconds.
const spikeBudgetMS float64 = 8.0

const reportEveryFrames int64 = 120

type DemoApp struct {
	*engine.App
}

type demoState struct {
	spikes       int
	nextReportAt int64
}

func New() (*DemoApp, error) {
	d := &DemoApp{
		App: &engine.App{
			State: &demoState{},
		},
	}

	d.FnInitialize = d.Initialize
	d.FnUpdate = d.Update
	d.FnShutdown = d.Shutdown

	return d, nil
}

func (d *DemoApp) Initialize() error {
	core.LogDebug("DemoApp Initialize fn....")

	cal := d.Runtime.Config().Calendar
	core.LogInfo("game calendar runs at %gx starting from %s",
		cal.Multiplier, d.Runtime.Clock().GameDateString(cal.Epoch, cal.Multiplier, cal.Layout))

	d.Runtime.Events().Register(EVENT_CODE_SIM_SPIKE, d.onSimSpike)

	return nil
}

func (d *DemoApp) Update(deltaTime float64) error {
	state := d.State.(*demoState)
	clock := d.Runtime.Clock()

	// Measure the fake workload with the clock's stopwatch.
	clock.Start()
	simulateWork()
	cost, err := clock.Stop("workload")
	if err != nil {
		return err
	}

	if cost > spikeBudgetMS {
		// Report it on the next drain instead of mid-update.
		d.Runtime.Events().FireDeferred(core.EventContext{
			Type: EVENT_CODE_SIM_SPIKE,
			Data: cost,
		})
	}

	if clock.Frames() >= state.nextReportAt {
		state.nextReportAt = clock.Frames() + reportEveryFrames

		fps, frameTime := d.Runtime.Metrics().Frame()
		span := clock.Span()
		cal := d.Runtime.Config().Calendar

		core.LogInfo("frame=%-8d delta=%.3f clock_fps=%5.1f loop=%5.1f(%4.1fms) up=%dd %02d:%02d game_date=%s",
			clock.Frames(),
			deltaTime,
			clock.FPS(),
			fps,
			frameTime,
			span.Days, span.Hours, span.Minutes,
			clock.GameDateString(cal.Epoch, cal.Multiplier, cal.Layout),
		)
	}

	return nil
}

func (d *DemoApp) Shutdown() error {
	state := d.State.(*demoState)
	clock := d.Runtime.Clock()

	core.LogInfo("demo done after %d frames and %d workload spikes", clock.Frames(), state.spikes)
	return nil
}

func (d *DemoApp) onSimSpike(context core.EventContext) {
	state := d.State.(*demoState)
	switch context.Type {
	case EVENT_CODE_SIM_SPIKE:
		{
			state.spikes++
			core.LogWarn("workload spiked to %.2f ms (%d so far)", context.Data.(float64), state.spikes)
		}
	}
}

var randSeeded bool = false

// simulateWork burns between one and three milliseconds, with the occasional
// outlier well past the budget.
func simulateWork() {
	if !randSeeded {
		rand.Seed(uint64(time.Now().UnixNano()))
		randSeeded = true
	}

	ms := (rand.Int31() % 3) + 1
	if rand.Int31()%240 == 0 {
		ms *= 10
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

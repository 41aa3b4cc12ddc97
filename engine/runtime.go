package engine

import (
	"fmt"

	"github.com/spaghettifunk/tempo/engine/config"
	"github.com/spaghettifunk/tempo/engine/core"
	"github.com/spaghettifunk/tempo/engine/math"
	"github.com/spaghettifunk/tempo/engine/platform"
)

type Stage uint8

const (
	// Runtime is in an uninitialized state
	StageUninitialized Stage = iota
	// Runtime is currently initializing
	StageInitializing
	// Runtime initialization is complete
	StageInitialized
	// Runtime is currently running
	StageRunning
	// Runtime is in the process of shutting down
	StageShuttingDown
)

// Runtime drives the frame loop: it pumps the platform, fires the frame tick
// that advances the clock, runs the application update, drains deferred
// events and keeps loop metrics. One Runtime owns one clock, one event
// system and one platform.
type Runtime struct {
	currentStage Stage
	app          *App
	cfg          *config.Config
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	events       *core.EventSystem
	clock        *core.Clock
	metrics      *core.Metrics
	watcher      *config.Watcher
	width        uint32
	height       uint32
}

func New(app *App, cfg *config.Config) (*Runtime, error) {
	if app == nil || app.FnUpdate == nil {
		return nil, fmt.Errorf("an app with an update hook is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Time.TargetFPS <= 0 {
		core.LogWarn("time.target_fps %v is unusable, falling back to %v", cfg.Time.TargetFPS, core.DefaultTargetFPS)
		cfg.Time.TargetFPS = core.DefaultTargetFPS
	}

	events := core.NewEventSystem()
	p := platform.New(events, cfg.Time.Headless)

	r := &Runtime{
		currentStage: StageUninitialized,
		app:          app,
		cfg:          cfg,
		clock: core.NewClock(core.ClockConfig{
			TargetFPS: cfg.Time.TargetFPS,
			Time:      p.Time(),
			Events:    events,
		}),
		metrics:     core.NewMetrics(),
		platform:    p,
		events:      events,
		isRunning:   true,
		isSuspended: false,
		width:       cfg.Window.Width,
		height:      cfg.Window.Height,
	}
	app.Runtime = r
	return r, nil
}

func (r *Runtime) Initialize() error {
	r.currentStage = StageInitializing

	core.LogSetLevel(r.cfg.LogLevel())

	// register the runtime events
	r.events.Register(core.EVENT_CODE_APPLICATION_QUIT, r.onEvent)
	r.events.Register(core.EVENT_CODE_RESIZED, r.onResized)
	r.events.Register(core.EVENT_CODE_CONFIG_RELOADED, r.onConfigReloaded)

	if err := r.platform.Startup(r.cfg.Application.Name,
		r.cfg.Window.StartPosX,
		r.cfg.Window.StartPosY,
		r.cfg.Window.Width,
		r.cfg.Window.Height); err != nil {
		return err
	}

	if r.cfg.Application.WatchConfig && r.cfg.Path() != "" {
		watcher, err := config.NewWatcher(r.cfg.Path(), r.events)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		r.watcher = watcher
	}

	if r.app.FnInitialize != nil {
		if err := r.app.FnInitialize(); err != nil {
			return err
		}
	}

	r.currentStage = StageInitialized
	return nil
}

func (r *Runtime) Run() error {
	if r.currentStage != StageInitialized {
		return core.ErrRuntimeNotInitialized
	}
	r.currentStage = StageRunning

	var targetFrameSeconds float64 = 1.0 / r.cfg.Time.TargetFPS
	var frameDurationMS float64 = targetFrameSeconds * math.K_SEC_TO_MS_MULTIPLIER

	for r.isRunning {
		if !r.platform.PumpMessages() {
			r.isRunning = false
		}

		if !r.isSuspended {
			var frameStartTime float64 = r.platform.AbsoluteTime()

			// Advance the clock and everything else listening on the tick.
			r.events.Fire(core.EventContext{Type: core.EVENT_CODE_FRAME_TICK})

			if err := r.app.FnUpdate(r.clock.Delta()); err != nil {
				core.LogError("application update failed, shutting down: %s", err)
				r.isRunning = false
				return err
			}

			// Deferred events land on the main thread, between the update
			// and the metrics of the same frame.
			r.events.ProcessEvents()

			var frameEndTime float64 = r.platform.AbsoluteTime()
			var frameElapsedTime float64 = frameEndTime - frameStartTime
			r.metrics.Update(frameElapsedTime)

			var remainingSeconds float64 = targetFrameSeconds - frameElapsedTime
			if remainingSeconds > 0 && r.cfg.Time.LimitFPS {
				remainingMS := (remainingSeconds * math.K_SEC_TO_MS_MULTIPLIER)
				// If there is time left, give it back to the OS.
				r.platform.Sleep(math.Clamp(remainingMS-1, 0, frameDurationMS))
			}
		} else {
			// Keep deferred events moving while minimized so a quit or a
			// config reload still lands.
			r.events.ProcessEvents()
		}
	}

	return nil
}

func (r *Runtime) Shutdown() error {
	r.currentStage = StageShuttingDown
	r.isRunning = false

	if r.app.FnShutdown != nil {
		if err := r.app.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}

	if r.watcher != nil {
		r.watcher.Stop()
	}

	r.clock.Destroy()

	if err := r.events.Shutdown(); err != nil {
		return err
	}
	if err := r.platform.Shutdown(); err != nil {
		return err
	}
	return nil
}

// Clock returns the frame clock owned by this runtime.
func (r *Runtime) Clock() *core.Clock {
	return r.clock
}

// Metrics returns the loop metrics owned by this runtime.
func (r *Runtime) Metrics() *core.Metrics {
	return r.metrics
}

// Events returns the event system owned by this runtime.
func (r *Runtime) Events() *core.EventSystem {
	return r.events
}

// Config returns the active configuration snapshot.
func (r *Runtime) Config() *config.Config {
	return r.cfg
}

// Size returns the width and height (in this order) of the window.
func (r *Runtime) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *Runtime) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		{
			core.LogInfo("application quit received, shutting down.")
			r.isRunning = false
		}
	}
}

func (r *Runtime) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Check if different. If so, trigger a resize event.
	if width != r.width || height != r.height {
		r.width = width
		r.height = height

		core.LogDebug("Window resize: %d, %d", width, height)

		// Handle minimization
		if width == 0 || height == 0 {
			core.LogInfo("Window minimized, suspending application.")
			r.isSuspended = true
			return
		}
		if r.isSuspended {
			core.LogInfo("Window restored, resuming application.")
			r.isSuspended = false
		}
	}
}

func (r *Runtime) onConfigReloaded(context core.EventContext) {
	next, ok := context.Data.(*config.Config)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	core.LogSetLevel(next.LogLevel())

	// The frame duration of a live clock is fixed at construction; a new
	// target rate only applies to clocks created after a restart.
	if next.Time.TargetFPS != r.cfg.Time.TargetFPS {
		core.LogWarn("time.target_fps changed to %v, ignored until restart", next.Time.TargetFPS)
		next.Time.TargetFPS = r.cfg.Time.TargetFPS
	}

	r.cfg = next
}

package platform

import (
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/tempo/engine/core"
	"github.com/spaghettifunk/tempo/engine/math"
)

var processStart = time.Now()

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the OS-facing services: the window, the message pump and the
// time primitives handed to the frame clock. In headless mode no windowing
// system call is ever made; the pump always reports alive and time comes
// from the process clock.
type Platform struct {
	Window   *glfw.Window
	events   *core.EventSystem
	headless bool
}

func New(events *core.EventSystem, headless bool) *Platform {
	return &Platform{
		Window:   nil,
		events:   events,
		headless: headless,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if p.headless {
		core.LogInfo("platform running headless, no window will be created")
		return nil
	}

	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // No rendering context is needed.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetIconifyCallback(p.iconifyCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.headless {
		return nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages drains pending OS events on the main thread. Returns false
// once the platform wants the application gone.
func (p *Platform) PumpMessages() bool {
	if p.headless {
		return true
	}
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// Sleep hands the given milliseconds back to the OS scheduler.
func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

// AbsoluteTime returns seconds since an arbitrary fixed origin: the
// windowing system timer when a window exists, the process clock otherwise.
func (p *Platform) AbsoluteTime() float64 {
	if p.headless {
		return time.Since(processStart).Seconds()
	}
	return glfw.GetTime()
}

// Time returns the TimeSource clocks should run on for this platform.
func (p *Platform) Time() core.TimeSource {
	if p.headless {
		return core.SystemTime()
	}
	return glfwTime{}
}

// glfwTime reads the windowing system timer, the same one AbsoluteTime and
// the frame limiter use, so clock deltas and the loop agree on elapsed time.
type glfwTime struct{}

func (glfwTime) NowMS() float64 {
	return glfw.GetTime() * math.K_SEC_TO_MS_MULTIPLIER
}

func (glfwTime) Now() time.Time {
	return time.Now()
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_APPLICATION_QUIT,
	})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width int, height int) {
	p.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(width),
			WindowHeight: uint32(height),
		},
	})
}

func (p *Platform) iconifyCallback(w *glfw.Window, iconified bool) {
	// Report minimize as a zero-sized resize so the loop suspends.
	if iconified {
		p.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: 0, WindowHeight: 0},
		})
		return
	}
	width, height := w.GetFramebufferSize()
	p.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(width),
			WindowHeight: uint32(height),
		},
	})
}

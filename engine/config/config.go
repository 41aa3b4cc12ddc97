package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/tempo/engine/core"
)

// Application carries identity and logging settings.
type Application struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Minimum severity emitted by the shared logger.
	LogLevel string `toml:"log_level"`
	// Re-read this file whenever it changes on disk.
	WatchConfig bool `toml:"watch_config"`
}

// Time configures the run loop and the frame clock.
type Time struct {
	// The frame rate the loop aims for. Fixed for the lifetime of a clock.
	TargetFPS float64 `toml:"target_fps"`
	// Sleep off the remaining frame budget instead of spinning.
	LimitFPS bool `toml:"limit_fps"`
	// Run without a window or any windowing system calls.
	Headless bool `toml:"headless"`
}

// Window describes the starting window geometry, if applicable.
type Window struct {
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
}

// Calendar configures the in-game date derived from accumulated frames.
type Calendar struct {
	// Unix seconds the game calendar starts from.
	Epoch float64 `toml:"epoch"`
	// How much faster than real time the calendar runs.
	Multiplier float64 `toml:"multiplier"`
	// Reference layout used to render game dates.
	Layout string `toml:"layout"`
}

type Config struct {
	Application Application `toml:"application"`
	Time        Time        `toml:"time"`
	Window      Window      `toml:"window"`
	Calendar    Calendar    `toml:"calendar"`

	path string
}

// Default returns the configuration used when no file is supplied. Sections
// missing from a loaded file keep these values.
func Default() *Config {
	return &Config{
		Application: Application{
			Name:     "tempo",
			LogLevel: "info",
		},
		Time: Time{
			TargetFPS: core.DefaultTargetFPS,
			LimitFPS:  true,
		},
		Window: Window{
			StartPosX: 100,
			StartPosY: 100,
			Width:     1280,
			Height:    720,
		},
		Calendar: Calendar{
			Epoch:      0,
			Multiplier: 1,
			Layout:     "2006-01-02 15:04:05",
		},
	}
}

// Load reads the TOML file at path on top of the defaults and validates the
// result. The path is remembered so the watcher can re-read the same file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Time.TargetFPS <= 0 {
		return fmt.Errorf("time.target_fps must be positive, got %v", c.Time.TargetFPS)
	}
	if c.Calendar.Multiplier <= 0 {
		return fmt.Errorf("calendar.multiplier must be positive, got %v", c.Calendar.Multiplier)
	}
	return nil
}

// Path returns where this configuration was loaded from, empty for defaults.
func (c *Config) Path() string {
	return c.path
}

// LogLevel maps the configured level name onto the logging levels. Unknown
// names fall back to info with a warning.
func (c *Config) LogLevel() core.LogLevel {
	switch strings.ToLower(c.Application.LogLevel) {
	case "debug":
		return core.DebugLevel
	case "info", "":
		return core.InfoLevel
	case "warn", "warning":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	case "fatal":
		return core.FatalLevel
	default:
		core.LogWarn("unknown log level %q, using info", c.Application.LogLevel)
		return core.InfoLevel
	}
}

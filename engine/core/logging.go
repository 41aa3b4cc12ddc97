package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel selects the minimum severity the shared logger emits. Callers use
// these instead of importing the logging dependency directly.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "Tempo ⏱️ ",
				})
				l.SetLevel(log.InfoLevel)
				singleton = &logger{l}
			})
	}
	return singleton
}

// LogSetLevel adjusts the minimum level emitted by the shared logger. The
// runtime calls this with the configured level at startup and again on every
// configuration reload.
func LogSetLevel(level LogLevel) {
	switch level {
	case DebugLevel:
		getLogger().SetLevel(log.DebugLevel)
	case InfoLevel:
		getLogger().SetLevel(log.InfoLevel)
	case WarnLevel:
		getLogger().SetLevel(log.WarnLevel)
	case ErrorLevel:
		getLogger().SetLevel(log.ErrorLevel)
	case FatalLevel:
		getLogger().SetLevel(log.FatalLevel)
	}
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}

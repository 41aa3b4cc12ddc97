/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/tempo/engine"
	"github.com/spaghettifunk/tempo/engine/config"
	"github.com/spaghettifunk/tempo/engine/core"
	"github.com/spaghettifunk/tempo/testbed"
)

const configPath = "tempo.toml"

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		core.LogWarn("no usable %s (%s), running with defaults", configPath, err)
		cfg = config.Default()
	}

	app, err := testbed.New()
	if err != nil {
		panic(err)
	}

	runtime, err := engine.New(app.App, cfg)
	if err != nil {
		panic(err)
	}

	if err := runtime.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start quit goroutine. FireDeferred is the one entry point other
	// goroutines may use; the quit lands on the loop thread
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		runtime.Events().FireDeferred(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	// run the loop
	if err := runtime.Run(); err != nil {
		panic(err)
	}

	if err := runtime.Shutdown(); err != nil {
		panic(err)
	}
}

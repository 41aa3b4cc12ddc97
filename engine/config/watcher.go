package config

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/tempo/engine/core"
)

// Editors that replace-on-save produce a burst of rename/create/write events
// for one save; collapse them into a single reload.
const debounceDelay = 100 * time.Millisecond

// Watcher re-reads the configuration file whenever it changes on disk and
// announces every successful reload through the event system as a deferred
// EVENT_CODE_CONFIG_RELOADED, so listeners always see it on the main update
// thread. A file that fails to load keeps the previous configuration active.
type Watcher struct {
	path   string
	events *core.EventSystem

	done      chan struct{}
	fsnotify  *fsnotify.Watcher
	isStarted bool
	isClosed  bool
}

func NewWatcher(path string, events *core.EventSystem) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     path,
		events:   events,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so that editors replacing the file on save stay visible. A
// watcher that fails to start is closed and cannot be started again.
func (w *Watcher) Start() error {
	if w.isClosed {
		return errors.New("watcher instance already closed")
	}
	if err := w.fsnotify.Add(filepath.Dir(w.path)); err != nil {
		w.isClosed = true
		w.fsnotify.Close()
		return err
	}
	w.isStarted = true
	go w.start()
	return nil
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	if w.isClosed {
		return
	}
	w.isClosed = true
	if !w.isStarted {
		// No goroutine to hand the close to.
		w.fsnotify.Close()
		return
	}
	close(w.done)
}

func (w *Watcher) start() {
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {

		case e := <-w.fsnotify.Events:
			if filepath.Clean(e.Name) != filepath.Clean(w.path) {
				continue
			}
			// Handle create, modify or replace-on-save events
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				debounce.Reset(debounceDelay)
			}

		case <-debounce.C:
			w.reload()

		case e := <-w.fsnotify.Errors:
			core.LogError(e.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		core.LogWarn("config reload failed, keeping the previous configuration: %s", err)
		return
	}
	core.LogInfo("configuration reloaded from %s", w.path)
	w.events.FireDeferred(core.EventContext{
		Type: core.EVENT_CODE_CONFIG_RELOADED,
		Data: cfg,
	})
}

package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tempo/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Fired once per loop iteration, before the application update runs.
	// Every subscribed clock advances on it.
	EVENT_CODE_FRAME_TICK EventCode = 0x02

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * se := context.Data.(*SystemEvent)
	 */
	EVENT_CODE_RESIZED EventCode = 0x03

	// The configuration file changed on disk and was read back successfully.
	/* Context usage:
	 * cfg := context.Data.(*config.Config)
	 */
	EVENT_CODE_CONFIG_RELOADED EventCode = 0x04

	MAX_EVENT_CODE EventCode = 0xFF
)

// EventContext carries a fired event to its listeners.
type EventContext struct {
	Type EventCode
	Data interface{}
}

// SystemEvent is the payload of EVENT_CODE_RESIZED.
type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// EventCallback runs for every event fired with the code it registered for.
// Dispatch is broadcast; a callback cannot stop the event from reaching the
// listeners registered after it.
type EventCallback func(context EventContext)

type registeredEvent struct {
	token    uuid.UUID
	callback EventCallback
}

// One frame's worth of deferred events should never get anywhere near this.
const maxDeferredEvents = 512

// EventSystem routes events to registered listeners. Register, Unregister,
// Fire and ProcessEvents all belong to the main update thread; FireDeferred
// is the one entry point other goroutines may use.
type EventSystem struct {
	registered map[EventCode][]*registeredEvent

	deferredMutex sync.Mutex
	deferred      *containers.RingQueue[EventContext]
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[EventCode][]*registeredEvent),
		deferred:   containers.NewRingQueue[EventContext](maxDeferredEvents),
	}
}

// Register subscribes the callback to events fired with the provided code and
// returns the token that identifies this registration to Unregister. The same
// callback can be registered any number of times; each registration gets its
// own token.
func (es *EventSystem) Register(code EventCode, callback EventCallback) uuid.UUID {
	token := uuid.New()
	es.registered[code] = append(es.registered[code], &registeredEvent{
		token:    token,
		callback: callback,
	})
	return token
}

// Unregister removes the registration behind the token. Returns false when no
// registration with that token exists for the code.
func (es *EventSystem) Unregister(code EventCode, token uuid.UUID) bool {
	events := es.registered[code]
	for i, e := range events {
		if e.token == token {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	LogWarn("no listener with token %s registered for event code 0x%02x", token, code)
	return false
}

// Fire dispatches the event to every listener of its code, in registration
// order, on the caller's goroutine. Dispatch runs over a snapshot of the
// listeners, so a callback registering or unregistering (itself included)
// never shifts the broadcast in flight. Firing a code nobody listens to is
// a no-op.
func (es *EventSystem) Fire(context EventContext) {
	events := append([]*registeredEvent(nil), es.registered[context.Type]...)
	for _, e := range events {
		e.callback(context)
	}
}

// FireDeferred queues the event for the next ProcessEvents drain instead of
// dispatching it in place. When the queue is full the event is dropped with a
// warning rather than blocking the caller.
func (es *EventSystem) FireDeferred(context EventContext) {
	es.deferredMutex.Lock()
	err := es.deferred.Enqueue(context)
	es.deferredMutex.Unlock()
	if err != nil {
		LogWarn("deferred event queue full, dropping event code 0x%02x", context.Type)
	}
}

// ProcessEvents dispatches everything queued through FireDeferred. The
// runtime calls this once per frame so that deferred events always land on
// the main update thread.
func (es *EventSystem) ProcessEvents() {
	for {
		es.deferredMutex.Lock()
		context, err := es.deferred.Dequeue()
		es.deferredMutex.Unlock()
		if err != nil {
			return
		}
		es.Fire(context)
	}
}

// Shutdown drops every registration and any queued deferred events.
func (es *EventSystem) Shutdown() error {
	for code := range es.registered {
		es.registered[code] = nil
	}
	es.deferredMutex.Lock()
	es.deferred = containers.NewRingQueue[EventContext](maxDeferredEvents)
	es.deferredMutex.Unlock()
	return nil
}

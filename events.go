package serialport

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// EventType identifies one kind of port event.
type EventType int

const (
	OpenEvent EventType = iota
	DataEvent
	CloseEvent
	ErrorEvent
	DisconnectEvent
)

// String returns the lowercase event name.
func (t EventType) String() string {
	switch t {
	case OpenEvent:
		return "open"
	case DataEvent:
		return "data"
	case CloseEvent:
		return "close"
	case ErrorEvent:
		return "error"
	case DisconnectEvent:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is one occurrence published on an EventChannel. Data is set for
// data events, Err for error and disconnect events.
type Event struct {
	Type EventType
	Data []byte
	Err  error
}

// EventHandler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type EventHandler func(Event)

// EventChannel is a handler-based publish/subscribe channel. Every Port
// owns one, and a single process-wide instance backs errors that no port
// listener catches.
type EventChannel struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]EventHandler
}

// NewEventChannel returns an empty channel with no subscribers.
func NewEventChannel() *EventChannel {
	return &EventChannel{
		handlers: make(map[EventType]map[int]EventHandler),
	}
}

// Subscribe registers h for events of type t and returns the matching
// unsubscribe function. Calling the returned function more than once is
// harmless.
func (c *EventChannel) Subscribe(t EventType, h EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.handlers[t]
	if m == nil {
		m = make(map[int]EventHandler)
		c.handlers[t] = m
	}
	id := c.nextID
	c.nextID++
	m[id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[t], id)
	}
}

// HasListeners reports whether any handler is currently subscribed for t.
func (c *EventChannel) HasListeners(t EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers[t]) > 0
}

// Emit delivers e to every handler subscribed for its type and reports
// whether at least one handler received it.
func (c *EventChannel) Emit(e Event) bool {
	c.mu.RLock()
	hs := make([]EventHandler, 0, len(c.handlers[e.Type]))
	for _, h := range c.handlers[e.Type] {
		hs = append(hs, h)
	}
	c.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
	return len(hs) > 0
}

var (
	processOnce   sync.Once
	processEvents *EventChannel
)

// ProcessEvents returns the process-wide fallback channel. Errors from
// ports with no error listener and no callback for the failing call end up
// here. The channel is created on first use and lives for the remainder of
// the process.
func ProcessEvents() *EventChannel {
	processOnce.Do(func() {
		processEvents = NewEventChannel()
	})
	return processEvents
}

// reportUnhandled publishes err on the process-wide channel. An error that
// reaches zero listeners there as well is logged and dropped; it never
// panics or kills the process.
func reportUnhandled(path string, err error) {
	if ProcessEvents().Emit(Event{Type: ErrorEvent, Err: err}) {
		return
	}
	log.Warn().Str("path", path).Err(err).Msg("unhandled serial port error")
}

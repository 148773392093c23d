package serialport

import (
	"fmt"
	"sync"
)

// Callback receives the completion of an asynchronous port operation. A nil
// error means the operation succeeded.
type Callback func(err error)

// WriteCallback receives the completion of Write: the byte count accepted
// by the binding and the error, if any.
type WriteCallback func(n int, err error)

// GetCallback receives the completion of Get.
type GetCallback func(state LineState, err error)

// Port is a single serial device connection. All operations are
// non-blocking: they queue work for the port's dispatch goroutine and
// deliver their result through the supplied callback. A nil callback
// discards the result.
//
// Queued operations run strictly in issue order on a single dispatch
// goroutine, so completions arrive in the order the calls were made and at
// most one binding operation is in flight per port. Callbacks and event
// handlers run on that goroutine (or on the notification pump for data,
// disconnect and unsolicited errors) and must not block. The dispatcher
// exits whenever the queue drains, so an idle port holds no goroutine.
//
// The binding handle is owned by the port and never exposed. It is present
// exactly while the state is OPEN or CLOSING.
type Port struct {
	path    string
	binding Binding
	events  *EventChannel

	dataConsumer      func([]byte)
	disconnectHandler func(error)

	mu         sync.Mutex
	state      ConnectionState
	handle     optionalHandle
	settings   Settings
	generation uint64

	qmu     sync.Mutex
	queue   []func()
	running bool
}

// New creates a port for the device at devicePath. Settings supplied
// through options are validated before anything else happens; a validation
// failure is returned synchronously and no port is created.
//
// Unless WithoutAutoOpen is given, New issues an Open before returning.
// Its outcome arrives through the WithOpenCallback callback, the error
// event, or the process-wide fallback, like any other open.
func New(devicePath string, opts ...Option) (*Port, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := Validate(o.settings); err != nil {
		return nil, err
	}
	if o.binding == nil {
		o.binding = defaultBinding()
	}

	p := &Port{
		path:              devicePath,
		binding:           o.binding,
		events:            NewEventChannel(),
		dataConsumer:      o.dataConsumer,
		disconnectHandler: o.disconnectHandler,
		settings:          o.settings.clone(),
		state:             StateClosed,
	}

	if o.autoOpen {
		p.Open(o.openCallback)
	}
	return p, nil
}

// enqueue appends op to the dispatch queue without blocking the caller,
// starting the dispatcher if it is not already running.
func (p *Port) enqueue(op func()) {
	p.qmu.Lock()
	p.queue = append(p.queue, op)
	if !p.running {
		p.running = true
		go p.dispatch()
	}
	p.qmu.Unlock()
}

// dispatch runs queued operations one at a time in issue order. At most one
// dispatcher exists per port, so it is the only goroutine that calls the
// binding on the port's behalf; it exits once the queue is empty.
func (p *Port) dispatch() {
	for {
		p.qmu.Lock()
		if len(p.queue) == 0 {
			p.queue = nil
			p.running = false
			p.qmu.Unlock()
			return
		}
		op := p.queue[0]
		p.queue = p.queue[1:]
		p.qmu.Unlock()

		op()
	}
}

// Open transitions the port from CLOSED through OPENING to OPEN. On
// success the open event fires and then cb runs with a nil error. On
// failure the port returns to CLOSED and the error goes to cb when
// supplied, else to the error event, else to the process-wide fallback.
// Opening an already open port fails the same way.
func (p *Port) Open(cb Callback) {
	p.enqueue(func() { p.execOpen(cb) })
}

func (p *Port) execOpen(cb Callback) {
	p.mu.Lock()
	if p.state != StateClosed {
		state := p.state
		p.mu.Unlock()
		switch state {
		case StateOpening:
			p.fail(cb, ErrPortOpening)
		case StateClosing:
			p.fail(cb, ErrPortClosing)
		default:
			p.fail(cb, ErrPortOpen)
		}
		return
	}
	p.state = StateOpening
	settings := p.settings.clone()
	p.mu.Unlock()

	h, err := p.binding.Open(p.path, settings)
	if err != nil {
		p.mu.Lock()
		p.state = StateClosed
		p.mu.Unlock()
		p.fail(cb, fmt.Errorf("open %s: %w", p.path, err))
		return
	}

	ch, err := p.binding.Notifications(h)
	if err != nil {
		_ = p.binding.Close(h)
		p.mu.Lock()
		p.state = StateClosed
		p.mu.Unlock()
		p.fail(cb, fmt.Errorf("open %s: %w", p.path, err))
		return
	}

	p.mu.Lock()
	p.handle = someHandle(h)
	p.state = StateOpen
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	go p.pump(ch, gen)

	p.events.Emit(Event{Type: OpenEvent})
	if cb != nil {
		cb(nil)
	}
}

// Close releases the binding handle and returns the port to CLOSED. On
// success the close event fires and then cb runs with a nil error. If the
// binding refuses to close, the handle is still held and the port returns
// to OPEN. Closing a port that is not open fails with ErrPortNotOpen.
func (p *Port) Close(cb Callback) {
	p.enqueue(func() { p.execClose(cb) })
}

func (p *Port) execClose(cb Callback) {
	p.mu.Lock()
	h, ok := p.handle.get()
	if p.state != StateOpen || !ok {
		p.mu.Unlock()
		p.fail(cb, ErrPortNotOpen)
		return
	}
	p.state = StateClosing
	p.mu.Unlock()

	err := p.binding.Close(h)

	p.mu.Lock()
	// A disconnect may have raced the binding call and already torn the
	// port down; in that case the close must not touch state again.
	stillClosing := p.state == StateClosing && p.handle.present()
	if err != nil {
		if stillClosing {
			p.state = StateOpen
		}
		p.mu.Unlock()
		p.fail(cb, err)
		return
	}
	if stillClosing {
		p.handle = optionalHandle{}
		p.state = StateClosed
	}
	p.mu.Unlock()

	if stillClosing {
		p.events.Emit(Event{Type: CloseEvent})
	}
	if cb != nil {
		cb(nil)
	}
}

// Write hands data to the binding for transmission. The callback receives
// the accepted byte count and any binding error. Writing zero bytes
// succeeds immediately without touching the binding. The caller must not
// modify data until the callback has run.
func (p *Port) Write(data []byte, cb WriteCallback) {
	p.enqueue(func() {
		h, _, ok := p.openHandle()
		if !ok {
			if cb != nil {
				cb(0, ErrPortNotOpen)
			}
			return
		}
		if len(data) == 0 {
			if cb != nil {
				cb(0, nil)
			}
			return
		}
		n, err := p.binding.Write(h, data)
		if cb != nil {
			cb(n, err)
		}
	})
}

// Flush discards buffered data that has not been transmitted or read.
func (p *Port) Flush(cb Callback) {
	p.enqueue(func() {
		h, _, ok := p.openHandle()
		if !ok {
			p.invoke(cb, ErrPortNotOpen)
			return
		}
		p.invoke(cb, p.binding.Flush(h))
	})
}

// Drain blocks the operation queue until all written data has been
// transmitted, then completes.
func (p *Port) Drain(cb Callback) {
	p.enqueue(func() {
		h, _, ok := p.openHandle()
		if !ok {
			p.invoke(cb, ErrPortNotOpen)
			return
		}
		p.invoke(cb, p.binding.Drain(h))
	})
}

// Set applies the given output control line states. All three lines take
// the value in signals, so use current values for lines that should keep
// their state.
func (p *Port) Set(signals Signals, cb Callback) {
	p.enqueue(func() {
		h, _, ok := p.openHandle()
		if !ok {
			p.invoke(cb, ErrPortNotOpen)
			return
		}
		p.invoke(cb, p.binding.Set(h, signals))
	})
}

// Get reads the current input modem line states.
func (p *Port) Get(cb GetCallback) {
	p.enqueue(func() {
		h, _, ok := p.openHandle()
		if !ok {
			if cb != nil {
				cb(LineState{}, ErrPortNotOpen)
			}
			return
		}
		state, err := p.binding.Get(h)
		if cb != nil {
			cb(state, err)
		}
	})
}

// Update applies new line settings to the open device. The settings are
// validated first; on success they become the port's current settings and
// survive a close and reopen.
func (p *Port) Update(settings Settings, cb Callback) {
	s := settings.clone()
	p.enqueue(func() {
		h, gen, ok := p.openHandle()
		if !ok {
			p.invoke(cb, ErrPortNotOpen)
			return
		}
		if err := Validate(s); err != nil {
			p.invoke(cb, err)
			return
		}
		if err := p.binding.Update(h, s); err != nil {
			p.invoke(cb, err)
			return
		}
		p.mu.Lock()
		if p.generation == gen && p.state == StateOpen {
			p.settings = s
		}
		p.mu.Unlock()
		p.invoke(cb, nil)
	})
}

// openHandle returns the current handle and open generation, or ok false
// when the port is not OPEN.
func (p *Port) openHandle() (Handle, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.handle.get()
	if !ok || p.state != StateOpen {
		return 0, 0, false
	}
	return h, p.generation, true
}

// invoke delivers a per-call result to cb. The result of an operation
// belongs to its caller alone, so nothing is published when cb is nil.
func (p *Port) invoke(cb Callback, err error) {
	if cb != nil {
		cb(err)
	}
}

// fail delivers an open or close error through exactly one channel: the
// callback when supplied, else the port error event when anyone listens,
// else the process-wide fallback.
func (p *Port) fail(cb Callback, err error) {
	if cb != nil {
		cb(err)
		return
	}
	if p.events.Emit(Event{Type: ErrorEvent, Err: err}) {
		return
	}
	reportUnhandled(p.path, err)
}

// pump forwards one open generation's notification stream. Data goes to
// the consumer when one is configured, otherwise to the data event. The
// pump exits when the binding closes the stream or the device disconnects.
// Anything left in the stream after the generation went stale is dropped.
func (p *Port) pump(ch <-chan Notification, gen uint64) {
	for n := range ch {
		if n.Disconnect != nil {
			if p.current(gen) {
				p.disconnected(n.Disconnect)
			}
			return
		}
		if len(n.Data) == 0 || !p.current(gen) {
			continue
		}
		if p.dataConsumer != nil {
			p.dataConsumer(n.Data)
		} else {
			p.events.Emit(Event{Type: DataEvent, Data: n.Data})
		}
	}
}

// current reports whether gen is still the active open generation.
func (p *Port) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation == gen && p.state == StateOpen
}

// disconnected tears the port down after the device vanished. The handle
// is dropped immediately so no further binding calls can reach the dead
// device, the binding gets a best-effort close to release its resources,
// and both the disconnect handler and the disconnect event fire once.
//
// Operations already queued complete with ErrPortNotOpen; an operation
// already executing delivers whatever result the binding gave it, and any
// state effect it would have had is discarded.
func (p *Port) disconnected(cause error) {
	p.mu.Lock()
	h, ok := p.handle.get()
	if !ok {
		p.mu.Unlock()
		return
	}
	p.handle = optionalHandle{}
	p.state = StateClosed
	p.mu.Unlock()

	// The device is already gone, so the close outcome is irrelevant.
	_ = p.binding.Close(h)

	err := &DisconnectError{Path: p.path, Err: cause}
	if p.disconnectHandler != nil {
		p.disconnectHandler(err)
	}
	p.events.Emit(Event{Type: DisconnectEvent, Err: err})
}

// Path returns the device path the port was created for.
func (p *Port) Path() string {
	return p.path
}

// State returns the current connection state.
func (p *Port) State() ConnectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsOpen reports whether the port is OPEN.
func (p *Port) IsOpen() bool {
	return p.State() == StateOpen
}

// Settings returns a copy of the port's current line settings.
func (p *Port) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings.clone()
}

// Events returns the port's event channel for direct subscription.
func (p *Port) Events() *EventChannel {
	return p.events
}

// OnOpen subscribes fn to the open event and returns the unsubscribe
// function.
func (p *Port) OnOpen(fn func()) func() {
	return p.events.Subscribe(OpenEvent, func(Event) { fn() })
}

// OnData subscribes fn to the data event. Data events only fire when no
// data consumer was configured.
func (p *Port) OnData(fn func([]byte)) func() {
	return p.events.Subscribe(DataEvent, func(e Event) { fn(e.Data) })
}

// OnClose subscribes fn to the close event.
func (p *Port) OnClose(fn func()) func() {
	return p.events.Subscribe(CloseEvent, func(Event) { fn() })
}

// OnError subscribes fn to the error event.
func (p *Port) OnError(fn func(error)) func() {
	return p.events.Subscribe(ErrorEvent, func(e Event) { fn(e.Err) })
}

// OnDisconnect subscribes fn to the disconnect event.
func (p *Port) OnDisconnect(fn func(error)) func() {
	return p.events.Subscribe(DisconnectEvent, func(e Event) { fn(e.Err) })
}

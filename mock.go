package serialport

import (
	"errors"
	"sync"
)

// Mock binding errors
var (
	ErrNoDevice   = errors.New("no such device")
	ErrDeviceBusy = errors.New("device busy")
)

// MockBinding is an in-memory Binding for tests and development. Devices
// are registered up front, opens are exclusive per device, and handles are
// issued from a counter that starts at zero. Error fields, when set, make
// the matching operation fail.
//
// All inspection helpers are keyed by device path, since ports never expose
// their handles.
type MockBinding struct {
	mu      sync.Mutex
	next    Handle
	devices map[string]*mockDevice
	handles map[Handle]*mockDevice
	calls   []string

	OpenErr   error
	WriteErr  error
	CloseErr  error
	FlushErr  error
	DrainErr  error
	SetErr    error
	GetErr    error
	UpdateErr error

	// Lines is what Get reports for every device.
	Lines LineState

	// Gate, when set, makes every binding operation receive one token
	// from it before running. Tests use it to control execution pacing.
	Gate chan struct{}
}

type mockDevice struct {
	handle   optionalHandle
	opens    int
	writes   [][]byte
	notif    chan Notification
	settings Settings
	signals  Signals
}

// NewMockBinding returns a mock that knows the given device paths.
func NewMockBinding(paths ...string) *MockBinding {
	b := &MockBinding{
		devices: make(map[string]*mockDevice),
		handles: make(map[Handle]*mockDevice),
	}
	for _, path := range paths {
		b.devices[path] = &mockDevice{}
	}
	return b
}

// AddDevice registers another device path.
func (b *MockBinding) AddDevice(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.devices[path]; !ok {
		b.devices[path] = &mockDevice{}
	}
}

func (b *MockBinding) gate() {
	b.mu.Lock()
	g := b.Gate
	b.mu.Unlock()
	if g != nil {
		<-g
	}
}

func (b *MockBinding) record(op string) {
	b.calls = append(b.calls, op)
}

// Open implements Binding.
func (b *MockBinding) Open(devicePath string, settings Settings) (Handle, error) {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("open")

	if b.OpenErr != nil {
		return 0, b.OpenErr
	}
	dev, ok := b.devices[devicePath]
	if !ok {
		return 0, ErrNoDevice
	}
	if dev.handle.present() {
		return 0, ErrDeviceBusy
	}

	h := b.next
	b.next++
	dev.handle = someHandle(h)
	dev.opens++
	dev.settings = settings.clone()
	dev.notif = make(chan Notification, 64)
	b.handles[h] = dev
	return h, nil
}

// Write implements Binding. The written bytes are recorded per device.
func (b *MockBinding) Write(h Handle, p []byte) (int, error) {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("write")

	dev, ok := b.handles[h]
	if !ok {
		return 0, ErrUnknownHandle
	}
	if b.WriteErr != nil {
		return 0, b.WriteErr
	}
	dev.writes = append(dev.writes, append([]byte(nil), p...))
	return len(p), nil
}

// Close implements Binding. On success the notification stream is closed
// and the handle retired; a configured CloseErr leaves the handle open.
func (b *MockBinding) Close(h Handle) error {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("close")

	dev, ok := b.handles[h]
	if !ok {
		return ErrUnknownHandle
	}
	if b.CloseErr != nil {
		return b.CloseErr
	}
	close(dev.notif)
	dev.notif = nil
	dev.handle = optionalHandle{}
	delete(b.handles, h)
	return nil
}

// Flush implements Binding.
func (b *MockBinding) Flush(h Handle) error {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("flush")

	if _, ok := b.handles[h]; !ok {
		return ErrUnknownHandle
	}
	return b.FlushErr
}

// Drain implements Binding.
func (b *MockBinding) Drain(h Handle) error {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("drain")

	if _, ok := b.handles[h]; !ok {
		return ErrUnknownHandle
	}
	return b.DrainErr
}

// Set implements Binding. The applied signals are recorded per device.
func (b *MockBinding) Set(h Handle, signals Signals) error {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("set")

	dev, ok := b.handles[h]
	if !ok {
		return ErrUnknownHandle
	}
	if b.SetErr != nil {
		return b.SetErr
	}
	dev.signals = signals
	return nil
}

// Get implements Binding, reporting the configured Lines.
func (b *MockBinding) Get(h Handle) (LineState, error) {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("get")

	if _, ok := b.handles[h]; !ok {
		return LineState{}, ErrUnknownHandle
	}
	if b.GetErr != nil {
		return LineState{}, b.GetErr
	}
	return b.Lines, nil
}

// Update implements Binding. The new settings are recorded per device.
func (b *MockBinding) Update(h Handle, settings Settings) error {
	b.gate()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("update")

	dev, ok := b.handles[h]
	if !ok {
		return ErrUnknownHandle
	}
	if b.UpdateErr != nil {
		return b.UpdateErr
	}
	dev.settings = settings.clone()
	return nil
}

// Notifications implements Binding.
func (b *MockBinding) Notifications(h Handle) (<-chan Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dev, ok := b.handles[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return dev.notif, nil
}

// PushData delivers incoming bytes on the device's notification stream, as
// if the device had sent them. It may block when the stream buffer is full.
func (b *MockBinding) PushData(path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	dev, ok := b.devices[path]
	if !ok {
		return ErrNoDevice
	}
	if dev.notif == nil {
		return ErrPortNotOpen
	}
	dev.notif <- Notification{Data: append([]byte(nil), data...)}
	return nil
}

// Disconnect reports the device as vanished on its notification stream.
// The handle stays registered until someone closes it, mirroring a real
// binding whose descriptor outlives the device.
func (b *MockBinding) Disconnect(path string, cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	dev, ok := b.devices[path]
	if !ok {
		return ErrNoDevice
	}
	if dev.notif == nil {
		return ErrPortNotOpen
	}
	dev.notif <- Notification{Disconnect: cause}
	return nil
}

// IsOpen reports whether the device at path currently has an open handle.
func (b *MockBinding) IsOpen(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[path]
	return ok && dev.handle.present()
}

// OpenCount returns how many times the device at path has been opened.
func (b *MockBinding) OpenCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[path]
	if !ok {
		return 0
	}
	return dev.opens
}

// Writes returns a copy of every chunk written to the device at path, in
// order, across all opens.
func (b *MockBinding) Writes(path string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[path]
	if !ok {
		return nil
	}
	out := make([][]byte, len(dev.writes))
	for i, w := range dev.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// LastSettings returns the settings most recently applied to the device at
// path by Open or Update.
func (b *MockBinding) LastSettings(path string) Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[path]
	if !ok {
		return Settings{}
	}
	return dev.settings.clone()
}

// LastSignals returns the signals most recently applied to the device at
// path by Set.
func (b *MockBinding) LastSignals(path string) Signals {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[path]
	if !ok {
		return Signals{}
	}
	return dev.signals
}

// CallLog returns the operation names the binding has executed, in order.
func (b *MockBinding) CallLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CallCount returns how many times the named operation has executed.
func (b *MockBinding) CallCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == op {
			n++
		}
	}
	return n
}

var _ Binding = (*MockBinding)(nil)

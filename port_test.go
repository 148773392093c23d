package serialport

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

const testDevice = "/dev/ttyUSB0"

const testTimeout = 2 * time.Second

// newTestPort returns a closed port on a fresh mock binding that knows
// testDevice.
func newTestPort(t *testing.T, opts ...Option) (*Port, *MockBinding) {
	t.Helper()
	mock := NewMockBinding(testDevice)
	opts = append([]Option{WithBinding(mock), WithoutAutoOpen()}, opts...)
	port, err := New(testDevice, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return port, mock
}

// openTestPort additionally opens the port and waits for the completion.
func openTestPort(t *testing.T, opts ...Option) (*Port, *MockBinding) {
	t.Helper()
	port, mock := newTestPort(t, opts...)
	if err := await(t, port.Open); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return port, mock
}

// await issues one callback-style operation and waits for its completion.
func await(t *testing.T, op func(Callback)) error {
	t.Helper()
	done := make(chan error, 1)
	op(func(err error) { done <- err })
	select {
	case err := <-done:
		return err
	case <-time.After(testTimeout):
		t.Fatal("Timed out waiting for operation completion")
		return nil
	}
}

// awaitWrite issues a write and waits for its completion.
func awaitWrite(t *testing.T, port *Port, data []byte) (int, error) {
	t.Helper()
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	port.Write(data, func(n int, err error) { done <- result{n, err} })
	select {
	case r := <-done:
		return r.n, r.err
	case <-time.After(testTimeout):
		t.Fatal("Timed out waiting for write completion")
		return 0, nil
	}
}

// awaitGet issues a Get and waits for its completion.
func awaitGet(t *testing.T, port *Port) (LineState, error) {
	t.Helper()
	type result struct {
		state LineState
		err   error
	}
	done := make(chan result, 1)
	port.Get(func(state LineState, err error) { done <- result{state, err} })
	select {
	case r := <-done:
		return r.state, r.err
	case <-time.After(testTimeout):
		t.Fatal("Timed out waiting for get completion")
		return LineState{}, nil
	}
}

// recv reads one value from ch or fails the test.
func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(testTimeout):
		t.Fatalf("Timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func TestNewValidatesSettings(t *testing.T) {
	mock := NewMockBinding(testDevice)
	port, err := New(testDevice, WithBinding(mock), WithDataBits(9))

	if port != nil {
		t.Error("Expected nil port for invalid settings")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if verr.Field != "dataBits" {
		t.Errorf("ValidationError.Field = %q, expected %q", verr.Field, "dataBits")
	}
	if mock.CallCount("open") != 0 {
		t.Error("New attempted to open despite invalid settings")
	}
}

func TestNewAutoOpens(t *testing.T) {
	mock := NewMockBinding(testDevice)
	done := make(chan error, 1)

	port, err := New(testDevice,
		WithBinding(mock),
		WithOpenCallback(func(err error) { done <- err }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := recv(t, done, "auto open completion"); err != nil {
		t.Fatalf("Auto open failed: %v", err)
	}
	if !port.IsOpen() {
		t.Error("Expected port to be open after auto open")
	}
	if mock.OpenCount(testDevice) != 1 {
		t.Errorf("OpenCount = %d, expected 1", mock.OpenCount(testDevice))
	}
}

func TestWithoutAutoOpenStaysClosed(t *testing.T) {
	port, mock := newTestPort(t)

	if port.State() != StateClosed {
		t.Errorf("State = %v, expected closed", port.State())
	}
	if mock.CallCount("open") != 0 {
		t.Error("Expected no open call without auto open")
	}
}

func TestOpenSuccess(t *testing.T) {
	port, mock := newTestPort(t)

	opened := make(chan struct{}, 1)
	port.OnOpen(func() { opened <- struct{}{} })

	if err := await(t, port.Open); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	recv(t, opened, "open event")

	if !port.IsOpen() {
		t.Error("IsOpen = false after successful open")
	}
	if port.State() != StateOpen {
		t.Errorf("State = %v, expected open", port.State())
	}
	if !mock.IsOpen(testDevice) {
		t.Error("Device not open at the binding")
	}
	if got := mock.LastSettings(testDevice); got.BaudRate != 9600 || got.DataBits != 8 {
		t.Errorf("Binding opened with %+v, expected default settings", got)
	}
}

func TestOperationsWithHandleZero(t *testing.T) {
	// The mock issues handle 0 first; every operation must work with it
	port, mock := openTestPort(t)

	if n, err := awaitWrite(t, port, []byte("hi")); n != 2 || err != nil {
		t.Errorf("Write = (%d, %v), expected (2, nil)", n, err)
	}
	if err := await(t, port.Flush); err != nil {
		t.Errorf("Flush failed: %v", err)
	}
	if _, err := awaitGet(t, port); err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if err := await(t, port.Close); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if mock.IsOpen(testDevice) {
		t.Error("Device still open at the binding after close")
	}
}

func TestOpenWhileOpen(t *testing.T) {
	port, _ := openTestPort(t)

	if err := await(t, port.Open); !errors.Is(err, ErrPortOpen) {
		t.Errorf("Second open = %v, expected ErrPortOpen", err)
	}
	if !port.IsOpen() {
		t.Error("Port no longer open after rejected second open")
	}
}

func TestOpenErrorWithoutCallbackGoesToErrorEvent(t *testing.T) {
	port, _ := openTestPort(t)

	errs := make(chan error, 1)
	port.OnError(func(err error) { errs <- err })

	port.Open(nil)

	if err := recv(t, errs, "error event"); !errors.Is(err, ErrPortOpen) {
		t.Errorf("Error event carried %v, expected ErrPortOpen", err)
	}
}

func TestOpenErrorWithCallbackDoesNotEmitEvent(t *testing.T) {
	port, _ := openTestPort(t)

	errs := make(chan error, 1)
	port.OnError(func(err error) { errs <- err })

	// With a callback supplied, the error must not also reach the listener
	if err := await(t, port.Open); !errors.Is(err, ErrPortOpen) {
		t.Fatalf("Second open = %v, expected ErrPortOpen", err)
	}
	if len(errs) != 0 {
		t.Errorf("Open error also reached the error event: %v", <-errs)
	}
}

func TestOpenErrorFallsBackToProcessChannel(t *testing.T) {
	port, _ := openTestPort(t)

	errs := make(chan error, 1)
	unsubscribe := ProcessEvents().Subscribe(ErrorEvent, func(e Event) { errs <- e.Err })
	defer unsubscribe()

	// No callback and no port error listener
	port.Open(nil)

	if err := recv(t, errs, "process-wide error"); !errors.Is(err, ErrPortOpen) {
		t.Errorf("Process channel carried %v, expected ErrPortOpen", err)
	}
}

func TestOpenFailure(t *testing.T) {
	mock := NewMockBinding(testDevice)
	port, err := New("/dev/ttyUSB9", WithBinding(mock), WithoutAutoOpen())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = await(t, port.Open)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("Open = %v, expected ErrNoDevice", err)
	}
	if !strings.Contains(err.Error(), "/dev/ttyUSB9") {
		t.Errorf("Open error %q does not name the device path", err.Error())
	}
	if port.State() != StateClosed {
		t.Errorf("State = %v after failed open, expected closed", port.State())
	}

	// The port must remain usable: a later open may succeed
	mock.AddDevice("/dev/ttyUSB9")
	if err := await(t, port.Open); err != nil {
		t.Errorf("Open after adding device failed: %v", err)
	}
}

func TestOpeningStateObservable(t *testing.T) {
	port, mock := newTestPort(t)
	mock.Gate = make(chan struct{}, 1)

	done := make(chan error, 1)
	port.Open(func(err error) { done <- err })

	deadline := time.Now().Add(testTimeout)
	for port.State() != StateOpening {
		if time.Now().After(deadline) {
			t.Fatal("Port never reached the opening state")
		}
		time.Sleep(time.Millisecond)
	}
	if port.IsOpen() {
		t.Error("IsOpen = true while opening")
	}

	mock.Gate <- struct{}{}
	if err := recv(t, done, "open completion"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if port.State() != StateOpen {
		t.Errorf("State = %v, expected open", port.State())
	}
}

func TestWriteBeforeOpen(t *testing.T) {
	port, mock := newTestPort(t)

	if _, err := awaitWrite(t, port, []byte("x")); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Write = %v, expected ErrPortNotOpen", err)
	}
	if mock.CallCount("write") != 0 {
		t.Error("Binding write called on a closed port")
	}
}

func TestZeroLengthWrite(t *testing.T) {
	port, mock := openTestPort(t)

	n, err := awaitWrite(t, port, nil)
	if n != 0 || err != nil {
		t.Errorf("Zero-length write = (%d, %v), expected (0, nil)", n, err)
	}
	if mock.CallCount("write") != 0 {
		t.Error("Binding write called for a zero-length write")
	}
}

func TestWriteDelivers(t *testing.T) {
	port, mock := openTestPort(t)

	if n, err := awaitWrite(t, port, []byte("hello")); n != 5 || err != nil {
		t.Errorf("Write = (%d, %v), expected (5, nil)", n, err)
	}

	writes := mock.Writes(testDevice)
	if len(writes) != 1 || string(writes[0]) != "hello" {
		t.Errorf("Binding recorded %v, expected one chunk %q", writes, "hello")
	}
}

func TestWriteErrorGoesToCallbackOnly(t *testing.T) {
	port, mock := openTestPort(t)

	errs := make(chan error, 4)
	port.OnError(func(err error) { errs <- err })

	mock.WriteErr = io.ErrShortWrite
	if _, err := awaitWrite(t, port, []byte("x")); !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("Write = %v, expected ErrShortWrite", err)
	}

	// Flush completes after anything the write could have published
	mock.WriteErr = nil
	if err := await(t, port.Flush); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(errs) != 0 {
		t.Errorf("Write error also reached the error event: %v", <-errs)
	}
}

func TestCloseSuccess(t *testing.T) {
	port, mock := openTestPort(t)

	closed := make(chan struct{}, 1)
	port.OnClose(func() { closed <- struct{}{} })

	if err := await(t, port.Close); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	recv(t, closed, "close event")

	if port.State() != StateClosed {
		t.Errorf("State = %v, expected closed", port.State())
	}
	if mock.IsOpen(testDevice) {
		t.Error("Device still open at the binding")
	}

	// Close released the device, so a reopen must succeed
	if err := await(t, port.Open); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if mock.OpenCount(testDevice) != 2 {
		t.Errorf("OpenCount = %d, expected 2", mock.OpenCount(testDevice))
	}
}

func TestCloseFailureKeepsPortOpen(t *testing.T) {
	port, mock := openTestPort(t)

	mock.CloseErr = errors.New("device busy flushing")
	err := await(t, port.Close)
	if err == nil || !strings.Contains(err.Error(), "busy flushing") {
		t.Fatalf("Close = %v, expected the binding error", err)
	}

	if port.State() != StateOpen {
		t.Errorf("State = %v after failed close, expected open", port.State())
	}
	if !mock.IsOpen(testDevice) {
		t.Error("Binding handle gone despite failed close")
	}

	// The handle must still be usable
	mock.CloseErr = nil
	if n, err := awaitWrite(t, port, []byte("ok")); n != 2 || err != nil {
		t.Errorf("Write after failed close = (%d, %v), expected (2, nil)", n, err)
	}
	if err := await(t, port.Close); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestCloseWhenClosed(t *testing.T) {
	port, _ := newTestPort(t)

	if err := await(t, port.Close); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Close = %v, expected ErrPortNotOpen", err)
	}
}

func TestCompletionsArriveInIssueOrder(t *testing.T) {
	port, mock := openTestPort(t)
	mock.Gate = make(chan struct{}, 3)

	order := make(chan string, 3)
	port.Write([]byte("a"), func(int, error) { order <- "write" })
	port.Flush(func(error) { order <- "flush" })
	port.Drain(func(error) { order <- "drain" })

	for i := 0; i < 3; i++ {
		mock.Gate <- struct{}{}
	}

	for _, expected := range []string{"write", "flush", "drain"} {
		if got := recv(t, order, "completion"); got != expected {
			t.Fatalf("Completion order: got %q, expected %q", got, expected)
		}
	}
}

func TestOperationsQueuedBehindCloseFail(t *testing.T) {
	port, mock := openTestPort(t)

	closeDone := make(chan error, 1)
	writeDone := make(chan error, 1)
	port.Close(func(err error) { closeDone <- err })
	port.Write([]byte("late"), func(n int, err error) { writeDone <- err })

	if err := recv(t, closeDone, "close completion"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := recv(t, writeDone, "write completion"); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Write queued behind close = %v, expected ErrPortNotOpen", err)
	}
	if mock.CallCount("write") != 0 {
		t.Error("Binding write called after close")
	}
}

func TestDisconnect(t *testing.T) {
	handlerErrs := make(chan error, 2)
	eventErrs := make(chan error, 2)

	port, mock := openTestPort(t,
		WithDisconnectHandler(func(err error) { handlerErrs <- err }),
	)
	port.OnDisconnect(func(err error) { eventErrs <- err })

	cause := io.ErrUnexpectedEOF
	if err := mock.Disconnect(testDevice, cause); err != nil {
		t.Fatalf("Mock disconnect failed: %v", err)
	}

	handlerErr := recv(t, handlerErrs, "disconnect handler")
	eventErr := recv(t, eventErrs, "disconnect event")

	for _, err := range []error{handlerErr, eventErr} {
		var derr *DisconnectError
		if !errors.As(err, &derr) {
			t.Fatalf("Expected *DisconnectError, got %v", err)
		}
		if derr.Path != testDevice {
			t.Errorf("DisconnectError.Path = %q, expected %q", derr.Path, testDevice)
		}
		if !errors.Is(err, cause) {
			t.Errorf("DisconnectError does not wrap the cause: %v", err)
		}
	}

	if port.State() != StateClosed {
		t.Errorf("State = %v after disconnect, expected closed", port.State())
	}
	if mock.IsOpen(testDevice) {
		t.Error("Binding handle not released after disconnect")
	}
	if _, err := awaitWrite(t, port, []byte("x")); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Write after disconnect = %v, expected ErrPortNotOpen", err)
	}

	// Each channel must have fired exactly once
	if len(handlerErrs) != 0 {
		t.Error("Disconnect handler fired more than once")
	}
	if len(eventErrs) != 0 {
		t.Error("Disconnect event fired more than once")
	}
}

func TestOperationsInFlightDuringDisconnect(t *testing.T) {
	port, mock := openTestPort(t)
	mock.Gate = make(chan struct{}, 2)

	writeDone := make(chan error, 1)
	updateDone := make(chan error, 1)
	port.Write([]byte("x"), func(n int, err error) { writeDone <- err })
	next := Settings{BaudRate: 115200, DataBits: 8, StopBits: 1}
	port.Update(next, func(err error) { updateDone <- err })

	// The device vanishes while the write is still inside the binding
	if err := mock.Disconnect(testDevice, io.EOF); err != nil {
		t.Fatalf("Mock disconnect failed: %v", err)
	}
	deadline := time.Now().Add(testTimeout)
	for port.State() != StateClosed {
		if time.Now().After(deadline) {
			t.Fatal("Port never reached the closed state")
		}
		time.Sleep(time.Millisecond)
	}

	// Release the blocked write and the teardown's binding close
	mock.Gate <- struct{}{}
	mock.Gate <- struct{}{}

	// The in-flight write's callback still fires, with whatever result the
	// binding gave it
	recv(t, writeDone, "write completion")

	// The queued update completes as not-open and changes nothing
	if err := recv(t, updateDone, "update completion"); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Update after disconnect = %v, expected ErrPortNotOpen", err)
	}
	if mock.CallCount("update") != 0 {
		t.Error("Binding update called after disconnect")
	}
	if got := port.Settings(); got.BaudRate != 9600 {
		t.Errorf("Settings() = %+v, expected them unchanged", got)
	}
	if port.IsOpen() {
		t.Error("IsOpen = true after disconnect")
	}
}

func TestReopenAfterDisconnect(t *testing.T) {
	port, mock := openTestPort(t)

	closed := make(chan error, 1)
	port.OnDisconnect(func(err error) { closed <- err })
	mock.Disconnect(testDevice, io.EOF)
	recv(t, closed, "disconnect event")

	if err := await(t, port.Open); err != nil {
		t.Fatalf("Reopen after disconnect failed: %v", err)
	}
	if mock.OpenCount(testDevice) != 2 {
		t.Errorf("OpenCount = %d, expected 2", mock.OpenCount(testDevice))
	}
}

func TestDataConsumerRouting(t *testing.T) {
	chunks := make(chan []byte, 4)
	port, mock := openTestPort(t, WithDataConsumer(func(p []byte) { chunks <- p }))

	events := make(chan []byte, 4)
	port.OnData(func(p []byte) { events <- p })

	mock.PushData(testDevice, []byte("abc"))

	if got := recv(t, chunks, "consumer chunk"); string(got) != "abc" {
		t.Errorf("Consumer received %q, expected %q", got, "abc")
	}
	if len(events) != 0 {
		t.Error("Data event fired despite a configured consumer")
	}
}

func TestDataEventWithoutConsumer(t *testing.T) {
	port, mock := openTestPort(t)

	events := make(chan []byte, 4)
	port.OnData(func(p []byte) { events <- p })

	mock.PushData(testDevice, []byte{0x01, 0x02})

	got := recv(t, events, "data event")
	if len(got) != 2 || got[0] != 0x01 || got[1] != 0x02 {
		t.Errorf("Data event carried %v, expected [1 2]", got)
	}
}

func TestRoutingPersistsAcrossReopen(t *testing.T) {
	chunks := make(chan []byte, 4)
	port, mock := openTestPort(t, WithDataConsumer(func(p []byte) { chunks <- p }))

	mock.PushData(testDevice, []byte("first"))
	recv(t, chunks, "chunk before reopen")

	if err := await(t, port.Close); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := await(t, port.Open); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	mock.PushData(testDevice, []byte("second"))
	if got := recv(t, chunks, "chunk after reopen"); string(got) != "second" {
		t.Errorf("Consumer received %q after reopen, expected %q", got, "second")
	}
}

func TestUpdateSettings(t *testing.T) {
	port, mock := openTestPort(t)

	next := Settings{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: ParityEven}
	if err := await(t, func(cb Callback) { port.Update(next, cb) }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := port.Settings(); got.BaudRate != 115200 || got.Parity != ParityEven {
		t.Errorf("Settings() = %+v, expected the updated settings", got)
	}
	if got := mock.LastSettings(testDevice); got.BaudRate != 115200 {
		t.Errorf("Binding settings = %+v, expected BaudRate 115200", got)
	}

	// Updated settings survive a close and reopen
	if err := await(t, port.Close); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := await(t, port.Open); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if got := mock.LastSettings(testDevice); got.BaudRate != 115200 || got.Parity != ParityEven {
		t.Errorf("Reopen applied %+v, expected the updated settings", got)
	}
}

func TestUpdateInvalidSettings(t *testing.T) {
	port, mock := openTestPort(t)

	bad := Settings{BaudRate: 9600, DataBits: 9, StopBits: 1}
	err := await(t, func(cb Callback) { port.Update(bad, cb) })

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update = %v, expected *ValidationError", err)
	}
	if mock.CallCount("update") != 0 {
		t.Error("Binding update called with invalid settings")
	}
	if got := port.Settings(); got.DataBits != 8 {
		t.Errorf("Settings() = %+v, expected them unchanged", got)
	}
}

func TestUpdateBeforeOpen(t *testing.T) {
	port, _ := newTestPort(t)

	err := await(t, func(cb Callback) { port.Update(DefaultSettings(), cb) })
	if !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Update = %v, expected ErrPortNotOpen", err)
	}
}

func TestSetSignals(t *testing.T) {
	port, mock := openTestPort(t)

	signals := Signals{RTS: true, DTR: false, Break: true}
	if err := await(t, func(cb Callback) { port.Set(signals, cb) }); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := mock.LastSignals(testDevice); got != signals {
		t.Errorf("Binding signals = %+v, expected %+v", got, signals)
	}
}

func TestDefaultSignals(t *testing.T) {
	s := DefaultSignals()
	if !s.RTS || !s.DTR || s.Break {
		t.Errorf("DefaultSignals = %+v, expected RTS and DTR asserted without break", s)
	}
}

func TestGetLineState(t *testing.T) {
	port, mock := openTestPort(t)
	mock.Lines = LineState{CTS: true, DSR: true}

	state, err := awaitGet(t, port)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !state.CTS || !state.DSR || state.DCD || state.RI {
		t.Errorf("Get = %+v, expected CTS and DSR set", state)
	}
}

func TestGetBeforeOpen(t *testing.T) {
	port, _ := newTestPort(t)

	if _, err := awaitGet(t, port); !errors.Is(err, ErrPortNotOpen) {
		t.Errorf("Get = %v, expected ErrPortNotOpen", err)
	}
}

func TestFlushAndDrainPassThroughErrors(t *testing.T) {
	port, mock := openTestPort(t)

	mock.FlushErr = errors.New("flush refused")
	if err := await(t, port.Flush); err == nil || !strings.Contains(err.Error(), "flush refused") {
		t.Errorf("Flush = %v, expected the binding error", err)
	}

	mock.DrainErr = errors.New("drain refused")
	if err := await(t, port.Drain); err == nil || !strings.Contains(err.Error(), "drain refused") {
		t.Errorf("Drain = %v, expected the binding error", err)
	}
}

func TestNilCallbacksAreTolerated(t *testing.T) {
	port, mock := openTestPort(t)

	port.Write([]byte("x"), nil)
	port.Flush(nil)
	port.Set(DefaultSignals(), nil)
	port.Get(nil)
	port.Update(DefaultSettings(), nil)

	// Drain completes after everything above has run
	if err := await(t, port.Drain); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if mock.CallCount("write") != 1 {
		t.Error("Write with nil callback never reached the binding")
	}
}

func TestConcurrentWrites(t *testing.T) {
	port, mock := openTestPort(t)

	const writers = 10
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go port.Write([]byte{byte(i)}, func(n int, err error) { done <- err })
	}

	for i := 0; i < writers; i++ {
		if err := recv(t, done, "write completion"); err != nil {
			t.Errorf("Concurrent write failed: %v", err)
		}
	}
	if got := mock.CallCount("write"); got != writers {
		t.Errorf("Binding write ran %d times, expected %d", got, writers)
	}
}

func TestPathAndSettingsAccessors(t *testing.T) {
	port, _ := newTestPort(t, WithBaudRate(57600))

	if port.Path() != testDevice {
		t.Errorf("Path = %q, expected %q", port.Path(), testDevice)
	}
	if got := port.Settings(); got.BaudRate != 57600 {
		t.Errorf("Settings().BaudRate = %d, expected 57600", got.BaudRate)
	}

	// The returned settings are a copy
	s := port.Settings()
	s.BaudRate = 1200
	if port.Settings().BaudRate != 57600 {
		t.Error("Settings() exposed internal state")
	}
}

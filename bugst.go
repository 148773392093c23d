package serialport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// portableReadTimeout bounds each read so a closed handle is noticed.
	portableReadTimeout = 100 * time.Millisecond

	// portableBreakPulse is how long a break is held. The portable stack
	// cannot latch a break indefinitely, so Set sends a pulse instead.
	portableBreakPulse = 250 * time.Millisecond
)

// PortableBinding drives devices through the cross-platform go.bug.st
// serial stack. It trades the termios binding's flow control support for
// portability beyond Linux. Handles are issued from a counter that starts
// at zero.
type PortableBinding struct {
	mu    sync.Mutex
	next  Handle
	ports map[Handle]*portablePort
}

type portablePort struct {
	port  serial.Port
	notif chan Notification
	done  chan struct{}
}

// NewPortableBinding returns a binding with no open handles.
func NewPortableBinding() *PortableBinding {
	return &PortableBinding{ports: make(map[Handle]*portablePort)}
}

var _ Binding = (*PortableBinding)(nil)

// PortableDevices enumerates device paths known to the portable stack.
func PortableDevices() ([]string, error) {
	return serial.GetPortsList()
}

// portableMode translates a settings record into a go.bug.st Mode. The
// Mode has no flow control representation, so flow control flags are
// refused rather than silently dropped.
func portableMode(s Settings) (*serial.Mode, error) {
	if len(s.FlowControl) > 0 {
		return nil, fmt.Errorf("flow control not supported by the portable binding: %v", s.FlowControl)
	}

	var parity serial.Parity
	switch s.Parity {
	case ParityNone:
		parity = serial.NoParity
	case ParityOdd:
		parity = serial.OddParity
	case ParityEven:
		parity = serial.EvenParity
	case ParityMark:
		parity = serial.MarkParity
	case ParitySpace:
		parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("unsupported parity: %v", s.Parity)
	}

	var stopBits serial.StopBits
	switch s.StopBits {
	case 1:
		stopBits = serial.OneStopBit
	case 2:
		stopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits: %d", s.StopBits)
	}

	return &serial.Mode{
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		Parity:   parity,
		StopBits: stopBits,
	}, nil
}

// Open implements Binding.
func (b *PortableBinding) Open(devicePath string, settings Settings) (Handle, error) {
	mode, err := portableMode(settings)
	if err != nil {
		return 0, err
	}

	sp, err := serial.Open(devicePath, mode)
	if err != nil {
		return 0, err
	}
	if err := sp.SetReadTimeout(portableReadTimeout); err != nil {
		sp.Close()
		return 0, fmt.Errorf("set read timeout: %w", err)
	}

	p := &portablePort{
		port:  sp,
		notif: make(chan Notification, notifyBuffer),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	h := b.next
	b.next++
	b.ports[h] = p
	b.mu.Unlock()

	go p.readLoop()
	return h, nil
}

// readLoop forwards incoming chunks on the notification stream until the
// handle is closed. The read timeout configured at open makes each read
// return (0, nil) when idle, so the loop notices a closed handle promptly.
func (p *portablePort) readLoop() {
	defer close(p.notif)
	buf := make([]byte, readChunk)
	for {
		select {
		case <-p.done:
			return
		default:
		}

		n, err := p.port.Read(buf)
		if err != nil {
			select {
			case <-p.done:
				// The port was closed underneath the read
			case p.notif <- Notification{Disconnect: err}:
			}
			return
		}
		if n == 0 {
			continue
		}

		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		select {
		case p.notif <- Notification{Data: chunk}:
		case <-p.done:
			return
		}
	}
}

// port looks up an open handle.
func (b *PortableBinding) port(h Handle) (*portablePort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ports[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return p, nil
}

// Write implements Binding.
func (b *PortableBinding) Write(h Handle, data []byte) (int, error) {
	p, err := b.port(h)
	if err != nil {
		return 0, err
	}
	return p.port.Write(data)
}

// Close implements Binding.
func (b *PortableBinding) Close(h Handle) error {
	b.mu.Lock()
	p, ok := b.ports[h]
	if ok {
		delete(b.ports, h)
	}
	b.mu.Unlock()

	if !ok {
		return ErrUnknownHandle
	}
	close(p.done)
	return p.port.Close()
}

// Flush implements Binding.
func (b *PortableBinding) Flush(h Handle) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	if err := p.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	if err := p.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("reset output buffer: %w", err)
	}
	return nil
}

// Drain implements Binding.
func (b *PortableBinding) Drain(h Handle) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	return p.port.Drain()
}

// Set implements Binding. A true Break sends a pulse of portableBreakPulse
// rather than latching the line.
func (b *PortableBinding) Set(h Handle, signals Signals) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	if err := p.port.SetRTS(signals.RTS); err != nil {
		return fmt.Errorf("set rts: %w", err)
	}
	if err := p.port.SetDTR(signals.DTR); err != nil {
		return fmt.Errorf("set dtr: %w", err)
	}
	if signals.Break {
		if err := p.port.Break(portableBreakPulse); err != nil {
			return fmt.Errorf("send break: %w", err)
		}
	}
	return nil
}

// Get implements Binding.
func (b *PortableBinding) Get(h Handle) (LineState, error) {
	p, err := b.port(h)
	if err != nil {
		return LineState{}, err
	}
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		return LineState{}, fmt.Errorf("get modem status: %w", err)
	}
	return LineState{
		CTS: bits.CTS,
		DSR: bits.DSR,
		DCD: bits.DCD,
		RI:  bits.RI,
	}, nil
}

// Update implements Binding.
func (b *PortableBinding) Update(h Handle, settings Settings) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	mode, err := portableMode(settings)
	if err != nil {
		return err
	}
	return p.port.SetMode(mode)
}

// Notifications implements Binding.
func (b *PortableBinding) Notifications(h Handle) (<-chan Notification, error) {
	p, err := b.port(h)
	if err != nil {
		return nil, err
	}
	return p.notif, nil
}

package serialport

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	// readChunk is the buffer size of the notification read loop.
	readChunk = 1024

	// readPollTenths is the VTIME value applied to every descriptor:
	// reads wake at least every 100ms so a closed handle is noticed.
	readPollTenths = 1

	// notifyBuffer is the notification stream capacity per handle.
	notifyBuffer = 32
)

// defaultBinding is what New uses when no WithBinding option is given.
func defaultBinding() Binding {
	return NewTermiosBinding()
}

// TermiosBinding drives local devices through raw termios descriptors.
// The handle it issues is the file descriptor itself, so handle 0 is
// perfectly valid.
type TermiosBinding struct {
	mu    sync.Mutex
	ports map[Handle]*termiosPort
}

type termiosPort struct {
	fd    int
	notif chan Notification
	done  chan struct{}
}

// NewTermiosBinding returns a binding with no open handles.
func NewTermiosBinding() *TermiosBinding {
	return &TermiosBinding{ports: make(map[Handle]*termiosPort)}
}

var _ Binding = (*TermiosBinding)(nil)

// baudConstants maps numeric rates onto their termios speed constants.
var baudConstants = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

// baudConstant converts an integer baud rate to the unix constant.
func baudConstant(rate int) (uint32, error) {
	c, ok := baudConstants[rate]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBaudRate, rate)
	}
	return c, nil
}

// dataBitsConstants maps data bit counts onto their CSIZE field values.
var dataBitsConstants = map[int]uint32{
	5: unix.CS5,
	6: unix.CS6,
	7: unix.CS7,
	8: unix.CS8,
}

// applySettings writes a full raw-mode termios configuration derived from s
// onto an open descriptor.
func applySettings(fd int, s Settings) error {
	baud, err := baudConstant(s.BaudRate)
	if err != nil {
		return err
	}
	bits, ok := dataBitsConstants[s.DataBits]
	if !ok {
		return fmt.Errorf("unsupported data bits: %d", s.DataBits)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}

	// Raw mode: no input, output or line processing
	termios.Cflag = bits | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	if s.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch s.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	case ParityMark:
		termios.Cflag |= unix.PARENB | unix.CMSPAR | unix.PARODD
	case ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
	}

	for _, f := range s.FlowControl {
		switch f {
		case FlowRTSCTS:
			termios.Cflag |= unix.CRTSCTS
		case FlowXOn:
			termios.Iflag |= unix.IXON
		case FlowXOff:
			termios.Iflag |= unix.IXOFF
		case FlowXAny:
			termios.Iflag |= unix.IXANY
		}
	}

	// Set speed directly in the termios structure
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	// VMIN=0 with a short VTIME keeps reads polling instead of blocking
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = readPollTenths

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	return nil
}

// Open implements Binding.
func (b *TermiosBinding) Open(devicePath string, settings Settings) (Handle, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return 0, err
	}

	if err := applySettings(fd, settings); err != nil {
		unix.Close(fd)
		return 0, err
	}

	p := &termiosPort{
		fd:    fd,
		notif: make(chan Notification, notifyBuffer),
		done:  make(chan struct{}),
	}
	h := Handle(fd)

	b.mu.Lock()
	b.ports[h] = p
	b.mu.Unlock()

	go p.readLoop()
	return h, nil
}

// readLoop polls the descriptor and forwards chunks on the notification
// stream until the handle is closed. A read failure on an open handle is
// reported as a disconnect; a vanished USB device surfaces here as EIO or
// ENXIO from the kernel.
func (p *termiosPort) readLoop() {
	defer close(p.notif)
	buf := make([]byte, readChunk)
	for {
		select {
		case <-p.done:
			return
		default:
		}

		n, err := unix.Read(p.fd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			select {
			case <-p.done:
				// The descriptor was closed underneath the read
			case p.notif <- Notification{Disconnect: err}:
			}
			return
		}
		if n == 0 {
			// VTIME expired with nothing to read
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
func (b *TermiosBinding) port(h Handle) (*termiosPort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ports[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return p, nil
}

// Write implements Binding.
func (b *TermiosBinding) Write(h Handle, data []byte) (int, error) {
	p, err := b.port(h)
	if err != nil {
		return 0, err
	}
	return unix.Write(p.fd, data)
}

// Close implements Binding. The handle is retired before the descriptor is
// closed so no other operation can reach the stale descriptor.
func (b *TermiosBinding) Close(h Handle) error {
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
	return unix.Close(p.fd)
}

// Flush implements Binding, discarding unread input and untransmitted
// output.
func (b *TermiosBinding) Flush(h Handle) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	if err := unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Drain implements Binding. TCSBRK with a nonzero argument is the classic
// tcdrain: it blocks until the output buffer has been transmitted.
func (b *TermiosBinding) Drain(h Handle) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	if err := unix.IoctlSetInt(p.fd, unix.TCSBRK, 1); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

// setModemLine asserts or deasserts one TIOCM line.
func setModemLine(fd int, line int, assert bool) error {
	req := uint(unix.TIOCMBIC)
	if assert {
		req = uint(unix.TIOCMBIS)
	}
	return unix.IoctlSetInt(fd, req, line)
}

// Set implements Binding.
func (b *TermiosBinding) Set(h Handle, signals Signals) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	if err := setModemLine(p.fd, unix.TIOCM_RTS, signals.RTS); err != nil {
		return fmt.Errorf("set rts: %w", err)
	}
	if err := setModemLine(p.fd, unix.TIOCM_DTR, signals.DTR); err != nil {
		return fmt.Errorf("set dtr: %w", err)
	}
	breakReq := uint(unix.TIOCCBRK)
	if signals.Break {
		breakReq = uint(unix.TIOCSBRK)
	}
	if err := unix.IoctlSetInt(p.fd, breakReq, 0); err != nil {
		return fmt.Errorf("set break: %w", err)
	}
	return nil
}

// Get implements Binding.
func (b *TermiosBinding) Get(h Handle) (LineState, error) {
	p, err := b.port(h)
	if err != nil {
		return LineState{}, err
	}
	status, err := unix.IoctlGetInt(p.fd, unix.TIOCMGET)
	if err != nil {
		return LineState{}, fmt.Errorf("get modem status: %w", err)
	}
	return LineState{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RI:  status&unix.TIOCM_RI != 0,
	}, nil
}

// Update implements Binding. TCSETS applies the new parameters
// immediately.
func (b *TermiosBinding) Update(h Handle, settings Settings) error {
	p, err := b.port(h)
	if err != nil {
		return err
	}
	return applySettings(p.fd, settings)
}

// Notifications implements Binding.
func (b *TermiosBinding) Notifications(h Handle) (<-chan Notification, error) {
	p, err := b.port(h)
	if err != nil {
		return nil, err
	}
	return p.notif, nil
}

package serialport

import (
	"errors"
	"testing"
)

func TestBaudConstant(t *testing.T) {
	validRates := []int{
		50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800, 2400, 4800,
		9600, 19200, 38400, 57600, 115200, 230400, 460800, 500000,
		576000, 921600, 1000000, 1152000, 1500000, 2000000, 2500000,
		3000000, 3500000, 4000000,
	}
	for _, rate := range validRates {
		if _, err := baudConstant(rate); err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", rate, err)
		}
	}

	invalidRates := []int{0, -1, 100, 12345, 128000, 5000000}
	for _, rate := range invalidRates {
		_, err := baudConstant(rate)
		if err == nil {
			t.Errorf("Expected error for baud rate %d", rate)
			continue
		}
		if !errors.Is(err, ErrInvalidBaudRate) {
			t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", rate, err)
		}
	}
}

func TestDataBitsConstants(t *testing.T) {
	for _, bits := range []int{5, 6, 7, 8} {
		if _, ok := dataBitsConstants[bits]; !ok {
			t.Errorf("No CSIZE constant for %d data bits", bits)
		}
	}
	if _, ok := dataBitsConstants[9]; ok {
		t.Error("Unexpected CSIZE constant for 9 data bits")
	}
}

func TestDefaultBindingIsTermios(t *testing.T) {
	if _, ok := defaultBinding().(*TermiosBinding); !ok {
		t.Errorf("defaultBinding() = %T, expected *TermiosBinding", defaultBinding())
	}
}

func TestTermiosUnknownHandle(t *testing.T) {
	b := NewTermiosBinding()

	if _, err := b.Write(99, []byte("x")); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Write = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Close(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Close = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Flush(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Flush = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Drain(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Drain = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Set(99, DefaultSignals()); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Set = %v, expected ErrUnknownHandle", err)
	}
	if _, err := b.Get(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Get = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Update(99, DefaultSettings()); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Update = %v, expected ErrUnknownHandle", err)
	}
	if _, err := b.Notifications(99); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Notifications = %v, expected ErrUnknownHandle", err)
	}
}

func TestTermiosOpenMissingDevice(t *testing.T) {
	b := NewTermiosBinding()

	if _, err := b.Open("/dev/ttyDOESNOTEXIST", DefaultSettings()); err == nil {
		t.Error("Expected error opening a missing device")
	}
}

func TestTermiosOpenNonTTY(t *testing.T) {
	// /dev/null accepts the open but rejects termios configuration
	b := NewTermiosBinding()

	if _, err := b.Open("/dev/null", DefaultSettings()); err == nil {
		t.Error("Expected error configuring a non-tty device")
	}
}

func TestTermiosOpenUnsupportedBaudRate(t *testing.T) {
	b := NewTermiosBinding()

	s := DefaultSettings()
	s.BaudRate = 12345
	_, err := b.Open("/dev/null", s)
	if !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Open = %v, expected ErrInvalidBaudRate", err)
	}
}

package serialport

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// reenumerationDelay is how long a reset device is given to come back.
// USB devices typically take 1-2 seconds to re-enumerate.
const reenumerationDelay = 2 * time.Second

// formatUSBPath builds the BBB/DDD argument usbreset expects from the
// sysfs bus and device numbers, zero-padded to three digits.
func formatUSBPath(bus, device string) (string, error) {
	busNum, err := strconv.Atoi(bus)
	if err != nil {
		return "", fmt.Errorf("bad bus number %q: %w", bus, err)
	}
	devNum, err := strconv.Atoi(device)
	if err != nil {
		return "", fmt.Errorf("bad device number %q: %w", device, err)
	}
	return fmt.Sprintf("%03d/%03d", busNum, devNum), nil
}

// ResetUSBDevice performs a USB-level reset of the device behind portPath.
// This can recover hardware that is in a hung or unresponsive state.
//
// It needs the usbreset utility (from usbutils) on the PATH and enough
// permissions to use it, typically root. Returns ErrUSBResetNotAvailable
// when the utility is missing and ErrUSBInfoNotAvailable when the port is
// not USB-backed or its sysfs metadata cannot be read.
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}
	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}
	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	usbPath, err := formatUSBPath(info.BusNumber, info.DeviceNumber)
	if err != nil {
		return ErrUSBInfoNotAvailable
	}

	cmd := exec.Command("usbreset", usbPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	// Give the device time to re-enumerate before anyone reopens it
	time.Sleep(reenumerationDelay)
	return nil
}

// ResetUSBDeviceBySerial resets the USB device carrying the given serial
// number. Useful when device paths move around across reboots or when
// several adapters are connected.
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := ListPorts()
	if err != nil {
		return err
	}

	for _, portPath := range ports {
		info, err := GetPortInfo(portPath)
		if err != nil {
			continue
		}
		if info.SerialNumber == serialNumber {
			return ResetUSBDevice(portPath)
		}
	}
	return fmt.Errorf("device with serial %s not found", serialNumber)
}

// IsUSBResetAvailable reports whether the usbreset utility is on the PATH.
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

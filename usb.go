package serialport

import (
	"os"
	"path/filepath"
	"strings"
)

// sysfsTTY is where tty class devices are looked up; tests point it at a
// fixture tree.
var sysfsTTY = "/sys/class/tty"

// readSysfsFile reads a single sysfs attribute with surrounding whitespace
// trimmed. A missing or unreadable attribute reads as the empty string.
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// findUpward walks from dir toward the root until it finds a directory
// containing the named attribute, for at most maxUp steps.
func findUpward(dir, attribute string, maxUp int) (string, bool) {
	for i := 0; i <= maxUp; i++ {
		if _, err := os.Stat(filepath.Join(dir, attribute)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// enrichUSBInfo fills the USB metadata fields of info from sysfs.
//
// The class symlink for a USB serial port resolves into the device tree,
// for example devices/usb5/5-2.3.1/5-2.3.1:1.0/ttyUSB0. The interface
// directory (bInterfaceNumber) and the USB device directory (idVendor and
// friends) sit at most a few levels above the resolved path, and exactly
// where depends on the driver, so both are located by walking upward.
// Fields whose attributes are missing stay empty; nothing fails.
func enrichUSBInfo(info *PortInfo) {
	link := filepath.Join(sysfsTTY, info.Name, "device")
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return
	}

	if interfaceDir, ok := findUpward(resolved, "bInterfaceNumber", 3); ok {
		info.InterfaceNumber = readSysfsFile(filepath.Join(interfaceDir, "bInterfaceNumber"))
	}

	deviceDir, ok := findUpward(resolved, "idVendor", 4)
	if !ok {
		return
	}
	info.VendorID = readSysfsFile(filepath.Join(deviceDir, "idVendor"))
	info.ProductID = readSysfsFile(filepath.Join(deviceDir, "idProduct"))
	info.SerialNumber = readSysfsFile(filepath.Join(deviceDir, "serial"))
	info.Manufacturer = readSysfsFile(filepath.Join(deviceDir, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(deviceDir, "product"))
	info.BusNumber = readSysfsFile(filepath.Join(deviceDir, "busnum"))
	info.DeviceNumber = readSysfsFile(filepath.Join(deviceDir, "devnum"))
}

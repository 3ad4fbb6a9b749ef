package printer

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Device names that are never receipt printers
var skipPortPatterns = []string{"Bluetooth", "Modem", "SPP", "DialIn", "Callout", "KeySerial", "debug-console"}

// serialPorts lists candidate serial devices for the current platform.
// includeBuiltin adds /dev/ttyS* on Linux.
func serialPorts(includeBuiltin bool) []string {
	switch runtime.GOOS {
	case "darwin":
		return scanMacOSPorts()
	case "linux":
		return scanLinuxPorts(includeBuiltin)
	case "windows":
		return scanWindowsPorts()
	default:
		return nil
	}
}

func scanMacOSPorts() []string {
	var ports []string
	for _, pattern := range []string{"/dev/cu.*", "/dev/tty.*"} {
		matches, _ := filepath.Glob(pattern)
		for _, match := range matches {
			if !skipPort(match) {
				ports = append(ports, match)
			}
		}
	}
	return ports
}

func scanLinuxPorts(includeBuiltin bool) []string {
	patterns := []string{"/dev/ttyUSB*", "/dev/ttyACM*"}
	if includeBuiltin {
		patterns = append(patterns, "/dev/ttyS*")
	}

	var ports []string
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		ports = append(ports, matches...)
	}
	return ports
}

func scanWindowsPorts() []string {
	ports := make([]string, 0, 256)
	for i := 1; i <= 256; i++ {
		ports = append(ports, fmt.Sprintf("COM%d", i))
	}
	return ports
}

func skipPort(path string) bool {
	for _, pattern := range skipPortPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

package printer

import (
	"fmt"
	"path/filepath"

	"github.com/google/gousb"
	"github.com/tarm/serial"
	"github.com/thereceipt/order-printing/internal/registry"
	"go.uber.org/zap"
)

// detectHardware scans USB and serial buses
func (m *Manager) detectHardware() ([]*Printer, error) {
	var printers []*Printer

	usbPrinters, err := m.detectUSB()
	if err != nil {
		m.logger.Warn("USB detection failed", zap.Error(err))
	} else {
		printers = append(printers, usbPrinters...)
	}

	serialPrinters, err := m.detectSerial()
	if err != nil {
		m.logger.Warn("serial detection failed", zap.Error(err))
	} else {
		printers = append(printers, serialPrinters...)
	}

	return printers, nil
}

// detectUSB detects USB printers using libusb
func (m *Manager) detectUSB() ([]*Printer, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var printers []*Printer

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return isPrinterClass(desc)
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	for _, dev := range devices {
		desc := dev.Desc

		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()

		description := fmt.Sprintf("USB: %04X:%04X", desc.Vendor, desc.Product)
		if manufacturer != "" || product != "" {
			description = fmt.Sprintf("USB: %s %s (%04X:%04X)",
				manufacturer, product, desc.Vendor, desc.Product)
		}

		info := registry.PrinterInfo{
			Type:        registry.TypeUSB,
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Description: description,
		}

		printers = append(printers, m.register(info))
		dev.Close()
	}

	return printers, nil
}

// isPrinterClass reports whether the device or any of its interfaces is class 7
func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// detectSerial detects serial printers by opening each candidate port briefly
func (m *Manager) detectSerial() ([]*Printer, error) {
	var printers []*Printer

	for _, portPath := range serialPorts(true) {
		port, err := serial.OpenPort(&serial.Config{Name: portPath, Baud: defaultBaud})
		if err != nil {
			continue
		}
		port.Close()

		info := registry.PrinterInfo{
			Type:        registry.TypeSerial,
			Device:      portPath,
			Description: fmt.Sprintf("Serial: %s", filepath.Base(portPath)),
		}

		printers = append(printers, m.register(info))
	}

	return printers, nil
}

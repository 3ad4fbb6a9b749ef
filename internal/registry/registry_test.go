package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printer_registry.json")
	reg, err := New(path, nil)
	require.NoError(t, err)
	return reg, path
}

func TestGetPrinterID(t *testing.T) {
	tests := []struct {
		name string
		info PrinterInfo
	}{
		{"usb", PrinterInfo{Type: TypeUSB, VID: 0x04B8, PID: 0x0E15, Description: "Epson TM-T20"}},
		{"serial", PrinterInfo{Type: TypeSerial, Device: "/dev/ttyUSB0", Description: "Serial Printer"}},
		{"network", PrinterInfo{Type: TypeNetwork, Host: "192.168.1.100", Port: 9100, Description: "Kitchen"}},
		{"hash fallback", PrinterInfo{Type: TypeUSB, Description: "Unknown device"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newRegistry(t)
			id1 := reg.GetPrinterID(tt.info)
			assert.NotEmpty(t, id1)
			assert.Equal(t, id1, reg.GetPrinterID(tt.info))
		})
	}
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "usb:04B8:0E15", generateIdentityKey(PrinterInfo{Type: TypeUSB, VID: 0x04B8, PID: 0x0E15}))
	assert.Equal(t, "serial:/dev/ttyS0", generateIdentityKey(PrinterInfo{Type: TypeSerial, Device: "/dev/ttyS0"}))
	assert.Equal(t, "network:10.0.0.5:9100", generateIdentityKey(PrinterInfo{Type: TypeNetwork, Host: "10.0.0.5", Port: 9100}))
	assert.Contains(t, generateIdentityKey(PrinterInfo{Description: "x"}), "hash:")
}

func TestNameAndFamily(t *testing.T) {
	reg, _ := newRegistry(t)
	id := reg.GetPrinterID(PrinterInfo{Type: TypeUSB, VID: 0x04B8, PID: 0x0E15, Description: "Test Printer"})

	assert.True(t, reg.SetPrinterName(id, "Kitchen Printer"))
	assert.Equal(t, "Kitchen Printer", reg.GetPrinterName(id))

	assert.True(t, reg.SetPrinterFamily(id, " STAR "))
	assert.Equal(t, "star", reg.GetPrinterFamily(id))

	assert.False(t, reg.SetPrinterName("missing", "x"))
	assert.False(t, reg.SetPrinterFamily("missing", "epson"))
	assert.Equal(t, "", reg.GetPrinterName("missing"))
	assert.Equal(t, "", reg.GetPrinterFamily("missing"))
}

func TestGetPrinterInfo(t *testing.T) {
	reg, _ := newRegistry(t)
	id := reg.GetPrinterID(PrinterInfo{Type: TypeUSB, VID: 0x04B8, PID: 0x0E15, Description: "Test Printer"})
	reg.SetPrinterName(id, "Front Counter")

	entry := reg.GetPrinterInfo(id)
	require.NotNil(t, entry)
	assert.Equal(t, TypeUSB, entry.Type)
	assert.Equal(t, uint16(0x04B8), entry.VID)
	assert.Equal(t, "Front Counter", entry.Name)

	entry.Name = "changed"
	assert.Equal(t, "Front Counter", reg.GetPrinterName(id))
}

func TestRemovePrinter(t *testing.T) {
	reg, _ := newRegistry(t)
	id := reg.GetPrinterID(PrinterInfo{Type: TypeUSB, VID: 0x1234, PID: 0x5678, Description: "Test"})

	assert.True(t, reg.RemovePrinter(id))
	assert.Nil(t, reg.GetPrinterInfo(id))
	assert.False(t, reg.RemovePrinter(id))
}

func TestPersistence(t *testing.T) {
	reg1, path := newRegistry(t)
	info := PrinterInfo{Type: TypeUSB, VID: 0xAAAA, PID: 0xBBBB, Description: "Persistent Printer"}
	id1 := reg1.GetPrinterID(info)
	reg1.SetPrinterName(id1, "Persistent Name")
	reg1.SetPrinterFamily(id1, "epson")

	reg2, err := New(path, nil)
	require.NoError(t, err)

	id2 := reg2.GetPrinterID(info)
	assert.Equal(t, id1, id2)
	assert.Equal(t, "Persistent Name", reg2.GetPrinterName(id2))
	assert.Equal(t, "epson", reg2.GetPrinterFamily(id2))
}

func TestGetAll(t *testing.T) {
	reg, _ := newRegistry(t)
	reg.GetPrinterID(PrinterInfo{Type: TypeUSB, VID: 0x1111, PID: 0x2222, Description: "Printer 1"})
	reg.GetPrinterID(PrinterInfo{Type: TypeSerial, Device: "/dev/tty1", Description: "Printer 2"})

	assert.Len(t, reg.GetAll(), 2)
}

func TestNew_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printer_registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(path, nil)
	assert.Error(t, err)
}

func TestSaveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	path := filepath.Join(t.TempDir(), "missing-dir", "printer_registry.json")

	reg, err := New(path, zap.New(core))
	require.NoError(t, err)

	id := reg.GetPrinterID(PrinterInfo{Type: TypeNetwork, Host: "10.0.0.1", Port: 9100})
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, logs.FilterMessage("failed to save printer registry").Len())
}

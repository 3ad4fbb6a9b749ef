package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereceipt/order-printing/internal/registry"
)

func TestMonitor_ReportsChanges(t *testing.T) {
	m := newTestManager(t)
	usb := m.register(registry.PrinterInfo{Type: registry.TypeUSB, VID: 1, PID: 2, Description: "USB: one"})

	var added []string
	var removed []string
	m.OnPrinterAdded(func(p *Printer) { added = append(added, p.ID) })
	m.OnPrinterRemoved(func(id string) { removed = append(removed, id) })

	mon := NewMonitor(m, 0, nil)

	m.detect = func() ([]*Printer, error) { return []*Printer{usb}, nil }
	mon.checkChanges()
	require.Equal(t, []string{usb.ID}, added)
	assert.Empty(t, removed)

	mon.checkChanges()
	assert.Len(t, added, 1)

	m.detect = func() ([]*Printer, error) { return nil, nil }
	mon.checkChanges()
	assert.Equal(t, []string{usb.ID}, removed)
}

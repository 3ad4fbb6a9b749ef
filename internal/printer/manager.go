// Package printer handles local printer detection, connection and raw job delivery
package printer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/thereceipt/order-printing/internal/registry"
	"go.uber.org/zap"
)

// Manager handles printer detection and management
type Manager struct {
	registry *registry.Registry
	printers map[string]*Printer
	mu       sync.RWMutex
	logger   *zap.Logger

	// detect scans for attached printers; replaced in tests
	detect func() ([]*Printer, error)

	// Event callbacks
	onPrinterAdded   func(*Printer)
	onPrinterRemoved func(string)
}

// Printer represents a detected or manually added printer
type Printer struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // usb, serial, network
	Description string `json:"description"`
	Device      string `json:"device,omitempty"`
	VID         uint16 `json:"vid,omitempty"`
	PID         uint16 `json:"pid,omitempty"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	Name        string `json:"name,omitempty"`   // Custom user-set name
	Family      string `json:"family,omitempty"` // Command set, epson or star
}

// DisplayName returns the custom name, falling back to the description
func (p *Printer) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Description
}

// NewManager creates a printer manager with a registry stored at registryPath
func NewManager(registryPath string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg, err := registry.New(registryPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return NewManagerWithRegistry(reg, logger), nil
}

// NewManagerWithRegistry creates a printer manager over an existing registry
func NewManagerWithRegistry(reg *registry.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		registry: reg,
		printers: make(map[string]*Printer),
		logger:   logger,
	}
	m.detect = m.detectHardware
	return m
}

// DetectPrinters scans for attached printers. Manually added network
// printers are kept.
func (m *Manager) DetectPrinters() ([]*Printer, error) {
	detected, err := m.detect()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	printers := make(map[string]*Printer, len(detected))
	for _, p := range m.printers {
		if p.Type == registry.TypeNetwork {
			printers[p.ID] = p
		}
	}
	for _, p := range detected {
		printers[p.ID] = p
	}
	m.printers = printers

	return m.sortedLocked(), nil
}

// GetPrinter returns a copy of the printer with id, or nil
func (m *Manager) GetPrinter(id string) *Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.printers[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// GetAllPrinters returns all known printers ordered by display name
func (m *Manager) GetAllPrinters() []*Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedLocked()
}

// Names returns the display name of every known printer
func (m *Manager) Names() []string {
	printers := m.GetAllPrinters()
	names := make([]string, len(printers))
	for i, p := range printers {
		names[i] = p.DisplayName()
	}
	return names
}

// FindByName resolves a printer by custom name, description or id, ignoring case
func (m *Manager) FindByName(name string) *Printer {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	printers := m.GetAllPrinters()
	for _, match := range []func(*Printer) string{
		func(p *Printer) string { return p.Name },
		func(p *Printer) string { return p.Description },
		func(p *Printer) string { return p.ID },
	} {
		for _, p := range printers {
			if v := match(p); v != "" && strings.EqualFold(v, name) {
				return p
			}
		}
	}
	return nil
}

// Exists reports whether a printer with this name is known
func (m *Manager) Exists(name string) bool {
	return m.FindByName(name) != nil
}

// Default returns the first known printer, or nil when there is none
func (m *Manager) Default() *Printer {
	printers := m.GetAllPrinters()
	if len(printers) == 0 {
		return nil
	}
	return printers[0]
}

// FamilyOf returns the stored family of the named printer, or ""
func (m *Manager) FamilyOf(name string) string {
	if p := m.FindByName(name); p != nil {
		return p.Family
	}
	return ""
}

// SetPrinterName sets a custom name for a printer
func (m *Manager) SetPrinterName(id string, name string) bool {
	if !m.registry.SetPrinterName(id, name) {
		return false
	}

	m.mu.Lock()
	if p, exists := m.printers[id]; exists {
		p.Name = name
	}
	m.mu.Unlock()

	return true
}

// SetPrinterFamily records which command set a printer understands
func (m *Manager) SetPrinterFamily(id string, family string) bool {
	if !m.registry.SetPrinterFamily(id, family) {
		return false
	}

	m.mu.Lock()
	if p, exists := m.printers[id]; exists {
		p.Family = m.registry.GetPrinterFamily(id)
	}
	m.mu.Unlock()

	return true
}

// AddNetworkPrinter manually adds a network printer
func (m *Manager) AddNetworkPrinter(host string, port int, description string) string {
	if description == "" {
		description = fmt.Sprintf("Network: %s:%d", host, port)
	}

	p := m.register(registry.PrinterInfo{
		Type:        registry.TypeNetwork,
		Host:        host,
		Port:        port,
		Description: description,
	})

	m.mu.Lock()
	m.printers[p.ID] = p
	m.mu.Unlock()

	m.logger.Info("network printer added",
		zap.String("printer_id", p.ID),
		zap.String("host", host),
		zap.Int("port", port),
	)

	return p.ID
}

// OnPrinterAdded sets a callback for when a printer is added
func (m *Manager) OnPrinterAdded(callback func(*Printer)) {
	m.onPrinterAdded = callback
}

// OnPrinterRemoved sets a callback for when a printer is removed
func (m *Manager) OnPrinterRemoved(callback func(string)) {
	m.onPrinterRemoved = callback
}

// register resolves the persistent identity of a printer
func (m *Manager) register(info registry.PrinterInfo) *Printer {
	id := m.registry.GetPrinterID(info)
	return &Printer{
		ID:          id,
		Type:        info.Type,
		Description: info.Description,
		Device:      info.Device,
		VID:         info.VID,
		PID:         info.PID,
		Host:        info.Host,
		Port:        info.Port,
		Name:        m.registry.GetPrinterName(id),
		Family:      m.registry.GetPrinterFamily(id),
	}
}

// sortedLocked returns copies ordered by display name then id; callers hold the lock
func (m *Manager) sortedLocked() []*Printer {
	result := make([]*Printer, 0, len(m.printers))
	for _, p := range m.printers {
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].DisplayName(), result[j].DisplayName()
		if a != b {
			return a < b
		}
		return result[i].ID < result[j].ID
	})
	return result
}

package printer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/thereceipt/order-printing/internal/registry"
	"go.uber.org/zap"
)

// Connection is a unified raw byte channel to a printer
type Connection interface {
	Write(data []byte) (int, error)
	Close() error
}

// Dialer opens a connection to a printer
type Dialer func(p *Printer) (Connection, error)

// ConnectionPool manages connections to printers
type ConnectionPool struct {
	connections map[string]Connection
	mu          sync.RWMutex
	dial        Dialer
	logger      *zap.Logger
}

// NewConnectionPool creates a pool that dials USB, serial and network printers
func NewConnectionPool(logger *zap.Logger) *ConnectionPool {
	return NewConnectionPoolWithDialer(dialPrinter, logger)
}

// NewConnectionPoolWithDialer creates a pool with a custom dialer
func NewConnectionPoolWithDialer(dial Dialer, logger *zap.Logger) *ConnectionPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionPool{
		connections: make(map[string]Connection),
		dial:        dial,
		logger:      logger,
	}
}

// Connect establishes a connection to a printer if none is open
func (p *ConnectionPool) Connect(printer *Printer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.connections[printer.ID]; exists {
		return nil
	}

	conn, err := p.dial(printer)
	if err != nil {
		return err
	}

	p.connections[printer.ID] = conn
	p.logger.Debug("printer connected",
		zap.String("printer_id", printer.ID),
		zap.String("type", printer.Type),
	)
	return nil
}

// Write sends raw bytes to a connected printer
func (p *ConnectionPool) Write(printerID string, data []byte) error {
	p.mu.RLock()
	conn, exists := p.connections[printerID]
	p.mu.RUnlock()

	if !exists {
		return fmt.Errorf("printer not connected: %s", printerID)
	}

	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return fmt.Errorf("failed to write to printer: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to write to printer: short write")
		}
		data = data[n:]
	}
	return nil
}

// Send connects if needed and writes data. A failed write drops the
// connection so the next attempt reconnects.
func (p *ConnectionPool) Send(printer *Printer, data []byte) error {
	if err := p.Connect(printer); err != nil {
		return fmt.Errorf("failed to connect to printer: %w", err)
	}

	if err := p.Write(printer.ID, data); err != nil {
		p.Disconnect(printer.ID)
		return err
	}
	return nil
}

// Disconnect closes a printer connection
func (p *ConnectionPool) Disconnect(printerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, exists := p.connections[printerID]
	if !exists {
		return nil
	}

	err := conn.Close()
	delete(p.connections, printerID)
	return err
}

// DisconnectAll closes all connections
func (p *ConnectionPool) DisconnectAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, conn := range p.connections {
		if err := conn.Close(); err != nil {
			p.logger.Warn("failed to close printer connection", zap.String("printer_id", id), zap.Error(err))
		}
		delete(p.connections, id)
	}
}

// IsConnected checks if a printer is connected
func (p *ConnectionPool) IsConnected(printerID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, exists := p.connections[printerID]
	return exists
}

// dialPrinter opens the transport matching the printer type
func dialPrinter(printer *Printer) (Connection, error) {
	switch printer.Type {
	case registry.TypeUSB:
		conn, err := ConnectUSB(printer.VID, printer.PID)
		if err == nil {
			return conn, nil
		}
		// USB printers often show up as serial devices on macOS
		if runtime.GOOS == "darwin" {
			for _, port := range serialPorts(false) {
				if serialConn, serialErr := ConnectSerial(port, defaultBaud); serialErr == nil {
					return serialConn, nil
				}
			}
		}
		return nil, err
	case registry.TypeSerial:
		conn, err := ConnectSerial(printer.Device, defaultBaud)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case registry.TypeNetwork:
		conn, err := ConnectNetwork(printer.Host, printer.Port)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported printer type: %s", printer.Type)
	}
}

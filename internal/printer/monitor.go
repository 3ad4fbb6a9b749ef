package printer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Monitor periodically re-detects printers and reports additions and removals
type Monitor struct {
	manager  *Manager
	interval time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	previous map[string]*Printer
}

// NewMonitor creates a new printer monitor
func NewMonitor(manager *Manager, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		manager:  manager,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		previous: make(map[string]*Printer),
	}
}

// Start begins monitoring for printer changes
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.checkChanges()
			}
		}
	}()
}

// Stop stops the monitor and waits for the current scan to finish
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) checkChanges() {
	current, err := m.manager.DetectPrinters()
	if err != nil {
		m.logger.Warn("printer detection failed", zap.Error(err))
		return
	}

	currentMap := make(map[string]*Printer, len(current))
	for _, p := range current {
		currentMap[p.ID] = p
	}

	for id, p := range currentMap {
		if _, exists := m.previous[id]; !exists {
			m.logger.Info("printer added",
				zap.String("printer_id", id),
				zap.String("description", p.Description),
			)
			if m.manager.onPrinterAdded != nil {
				m.manager.onPrinterAdded(p)
			}
		}
	}

	for id, p := range m.previous {
		if _, exists := currentMap[id]; !exists {
			m.logger.Info("printer removed",
				zap.String("printer_id", id),
				zap.String("description", p.Description),
			)
			if m.manager.onPrinterRemoved != nil {
				m.manager.onPrinterRemoved(id)
			}
		}
	}

	m.previous = currentMap
}

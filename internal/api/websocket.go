package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thereceipt/order-printing/internal/printer"
	"go.uber.org/zap"
)

// WebSocket message types
const (
	EventPrintOrder     = "print_order"
	EventPrinterAdded   = "printer_added"
	EventPrinterRemoved = "printer_removed"
	EventResponse       = "response"
	EventError          = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	once   sync.Once
}

// hub tracks connected clients for broadcasts
type hub struct {
	mu      sync.RWMutex
	clients map[*WSClient]bool
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{clients: make(map[*WSClient]bool), logger: logger}
}

func (h *hub) add(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *hub) broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.logger.Warn("websocket client buffer full, dropping event", zap.String("event", msg.Event))
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]bool)
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	s.hub.add(client)
	s.logger.Info("websocket client connected")

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.server.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *WSClient) readPump() {
	defer func() {
		c.server.hub.remove(c)
		c.conn.Close()
		c.server.logger.Info("websocket client disconnected")
	}()

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		c.handleMessage(&msg)
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventPrintOrder:
		c.handlePrintOrder(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// handlePrintOrder prints remotely when printer_id is set, locally when printer_name is
func (c *WSClient) handlePrintOrder(data map[string]interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.sendError(fmt.Sprintf("invalid print request: %v", err))
		return
	}

	var req struct {
		orderSource
		PrinterID   int64  `json:"printer_id"`
		PrinterName string `json:"printer_name"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		c.sendError(fmt.Sprintf("invalid print request: %v", err))
		return
	}

	if req.PrinterID == 0 && req.PrinterName == "" {
		c.sendError("printer_id or printer_name is required")
		return
	}

	o, err := req.load(c.server.source)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	ctx := context.Background()
	svc := c.server.service

	if req.PrinterID != 0 {
		receipt, err := svc.PrintRemote(ctx, o, req.PrinterID, req.Family)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendResponse(map[string]interface{}{
			"success":  true,
			"order_id": o.ID,
			"job_id":   receipt.JobID,
			"content":  receipt.Base64,
		})
		return
	}

	res := svc.PrintLocal(ctx, o, req.PrinterName, req.Family)
	if !res.OK() {
		c.sendError(res.Err.Error())
		return
	}
	c.sendResponse(map[string]interface{}{
		"success":  true,
		"order_id": o.ID,
		"job_id":   res.JobID,
	})
}

func (c *WSClient) sendResponse(data map[string]interface{}) {
	c.trySend(WSMessage{Event: EventResponse, Data: data})
}

func (c *WSClient) sendError(message string) {
	c.trySend(WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	})
}

// trySend queues a message unless the client is gone or its buffer is full
func (c *WSClient) trySend(msg WSMessage) {
	defer func() {
		// send was closed by Shutdown
		_ = recover()
	}()
	select {
	case c.send <- msg:
	default:
	}
}

// BroadcastPrinterAdded broadcasts a printer added event to all connected clients
func (s *Server) BroadcastPrinterAdded(p *printer.Printer) {
	if p == nil {
		return
	}
	s.hub.broadcast(WSMessage{
		Event: EventPrinterAdded,
		Data: map[string]interface{}{
			"id":          p.ID,
			"type":        p.Type,
			"description": p.Description,
			"name":        p.Name,
			"family":      p.Family,
		},
	})
	s.logger.Debug("broadcast printer added", zap.String("printer_id", p.ID))
}

// BroadcastPrinterRemoved broadcasts a printer removed event to all connected clients
func (s *Server) BroadcastPrinterRemoved(printerID string) {
	s.hub.broadcast(WSMessage{
		Event: EventPrinterRemoved,
		Data: map[string]interface{}{
			"id": printerID,
		},
	})
	s.logger.Debug("broadcast printer removed", zap.String("printer_id", printerID))
}

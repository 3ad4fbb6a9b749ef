// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thereceipt/order-printing/internal/command"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/metrics"
	"github.com/thereceipt/order-printing/internal/printer"
	"github.com/thereceipt/order-printing/internal/printing"
	"github.com/thereceipt/order-printing/pkg/order"
	"go.uber.org/zap"
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *printer.Manager
	queue    *printer.PrintQueue
	service  *printing.Service
	executor *command.Executor
	metrics  *metrics.Metrics
	hub      *hub
	upgrader websocket.Upgrader
	source   order.Source
	logger   *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithOrderSource sets where order_path and order_url are read from.
// The default refuses file paths.
func WithOrderSource(src order.Source) Option {
	return func(s *Server) { s.source = src }
}

// NewServer creates a new API server
func NewServer(manager *printer.Manager, queue *printer.PrintQueue, service *printing.Service, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	server := &Server{
		router:   router,
		manager:  manager,
		queue:    queue,
		service:  service,
		metrics:  m,
		hub:      newHub(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		source: order.Source{DenyFiles: true},
		logger: logger,
	}
	for _, opt := range opts {
		opt(server)
	}
	server.executor = command.NewExecutor(manager, queue, service, command.WithSource(server.source))

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/printers", s.handleGetPrinters)
	s.router.POST("/printer/:id/name", s.handleSetPrinterName)
	s.router.POST("/printer/network", s.handleAddNetworkPrinter)
	s.router.GET("/jobs", s.handleGetJobs)
	s.router.GET("/job/:id", s.handleGetJob)

	s.router.POST("/orders/preview", s.handlePreviewOrder)
	s.router.POST("/orders/print", s.handlePrintRemote)
	s.router.POST("/orders/print-local", s.handlePrintLocal)

	s.router.POST("/directives/encode", s.handleEncodeDirectives)

	s.router.POST("/command", s.handleCommand)

	s.router.GET("/ws", s.handleWebSocket)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler returns the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleGetPrinters returns all detected printers
func (s *Server) handleGetPrinters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"printers": s.manager.GetAllPrinters(),
	})
}

// handleSetPrinterName sets a custom name and, optionally, the command set of a printer
func (s *Server) handleSetPrinterName(c *gin.Context) {
	printerID := c.Param("id")

	var req struct {
		Name   string `json:"name" binding:"required"`
		Family string `json:"family"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	var family encoder.Family
	if req.Family != "" {
		f, err := encoder.ParseFamily(req.Family)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		family = f
	}

	if !s.manager.SetPrinterName(printerID, req.Name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
		return
	}

	if family != "" {
		s.manager.SetPrinterFamily(printerID, family.String())
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleAddNetworkPrinter manually adds a network printer
func (s *Server) handleAddNetworkPrinter(c *gin.Context) {
	var req struct {
		Host        string `json:"host" binding:"required"`
		Port        int    `json:"port"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host is required"})
		return
	}

	if req.Port == 0 {
		req.Port = 9100
	}

	printerID := s.manager.AddNetworkPrinter(req.Host, req.Port, req.Description)
	p := s.manager.GetPrinter(printerID)
	s.BroadcastPrinterAdded(p)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"printer_id": printerID,
		"printer":    p,
	})
}

// handleGetJobs returns all local print jobs
func (s *Server) handleGetJobs(c *gin.Context) {
	jobs := s.queue.GetAllJobs()

	jobsData := make([]map[string]interface{}, len(jobs))
	for i, job := range jobs {
		jobsData[i] = command.JobData(job)
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobsData})
}

// handleGetJob returns a specific print job
func (s *Server) handleGetJob(c *gin.Context) {
	job := s.queue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, command.JobData(job))
}

// handleCommand handles command execution requests
func (s *Server) handleCommand(c *gin.Context) {
	var req struct {
		Command string `json:"command" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	result := s.executor.Execute(c.Request.Context(), req.Command)

	if !result.Success {
		status := http.StatusBadRequest
		if result.Err != nil {
			status = statusFor(result.Err)
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   result.Error,
		})
		return
	}

	response := gin.H{"success": true}
	if result.Message != "" {
		response["message"] = result.Message
	}
	for k, v := range result.Data {
		response[k] = v
	}
	c.JSON(http.StatusOK, response)
}

// Run starts the API server and blocks until Shutdown
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type"},
		MaxAge:          12 * time.Hour,
	})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

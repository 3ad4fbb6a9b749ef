package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/printer"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

// orderSource names the order to print: inline JSON, a file path or a URL
type orderSource struct {
	Order     json.RawMessage `json:"order"`
	OrderPath string          `json:"order_path"`
	OrderURL  string          `json:"order_url"`
	Family    string          `json:"family"`
}

func (src *orderSource) load(from order.Source) (*order.Order, error) {
	switch {
	case src.OrderURL != "":
		return from.Load(src.OrderURL)
	case src.OrderPath != "":
		return from.Load(src.OrderPath)
	case len(src.Order) > 0 && string(src.Order) != "null":
		return order.Parse(src.Order)
	default:
		return nil, fmt.Errorf("%w: order, order_path, or order_url is required", order.ErrInvalid)
	}
}

// handlePreviewOrder returns the directives of an order and their text rendering
func (s *Server) handlePreviewOrder(c *gin.Context) {
	var req struct {
		orderSource
		Styled bool `json:"styled"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := req.load(s.source)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ds, text, err := s.service.PreviewText(o, req.Styled)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"directives": ds,
		"preview":    text,
	})
}

// handlePrintRemote submits an order receipt to the print-job API
func (s *Server) handlePrintRemote(c *gin.Context) {
	var req struct {
		orderSource
		PrinterID int64 `json:"printer_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "printer_id is required"})
		return
	}

	o, err := req.load(s.source)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	receipt, err := s.service.PrintRemote(c.Request.Context(), o, req.PrinterID, req.Family)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job_id":  receipt.JobID,
		"content": receipt.Base64,
	})
}

// handlePrintLocal prints an order receipt on a local printer
func (s *Server) handlePrintLocal(c *gin.Context) {
	var req struct {
		orderSource
		PrinterName string `json:"printer_name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "printer_name is required"})
		return
	}

	o, err := req.load(s.source)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	res := s.service.PrintLocal(c.Request.Context(), o, req.PrinterName, req.Family)
	if !res.OK() {
		body := gin.H{"success": false, "error": res.Err.Error()}
		if res.JobID != "" {
			body["job_id"] = res.JobID
		}
		c.JSON(statusFor(res.Err), body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job_id":  res.JobID,
	})
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalid),
		errors.Is(err, directive.ErrInvalid),
		errors.Is(err, encoder.ErrUnsupportedPrinterFamily),
		errors.Is(err, encoder.ErrEncodingFailure),
		errors.Is(err, dispatch.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrSourceDenied):
		return http.StatusForbidden
	case errors.Is(err, dispatch.ErrPrinterNotFound),
		errors.Is(err, printer.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrDispatch):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// handleEncodeDirectives encodes a caller-built directive sequence
func (s *Server) handleEncodeDirectives(c *gin.Context) {
	var req struct {
		Directives json.RawMessage `json:"directives" binding:"required"`
		Family     string          `json:"family"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "directives are required"})
		return
	}

	ds, err := directive.Parse(req.Directives)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	buf, err := s.service.Encode(c.Request.Context(), ds, req.Family)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"size":    len(buf),
		"content": dispatch.EncodeContent(buf),
	})
}

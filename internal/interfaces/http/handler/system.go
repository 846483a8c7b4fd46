package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	appName   string
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(appName string) *SystemHandler {
	return &SystemHandler{
		appName:   appName,
		startedAt: time.Now(),
	}
}

// Health responds to liveness probes
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.appName,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// Ready responds to readiness probes
// GET /ready
func (h *SystemHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const serviceName = "smartfold-composer"

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready handles GET /ready. Unreachable storage only degrades the service,
// drafts are then kept in memory for the life of the session.
func (h *Handlers) Ready(c *gin.Context) {
	storage := "ok"
	if h.storage == nil {
		storage = "none"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			storage = "unavailable"
		}
	}

	status := "ready"
	if storage == "unavailable" {
		status = "degraded"
	}

	sessions := 0
	if h.registry != nil {
		sessions = h.registry.Len()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  serviceName,
		"storage":  storage,
		"sessions": sessions,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    "1.0.0",
		"service":    serviceName,
		"go_version": runtime.Version(),
		"started_at": startTime.Format(time.RFC3339),
	})
}

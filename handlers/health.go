package handlers

import (
	"context"
	"net/http"
	"time"

	"wetech/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	monitor *utils.HealthMonitor
	logger  *zap.Logger
}

func NewHealthHandler(monitor *utils.HealthMonitor, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{monitor: monitor, logger: logger}
}

// Health checks every dependency.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := h.monitor.Check(ctx)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
		getLogger(c, h.logger).Warn("Health check failed", zap.Any("checks", status.Checks))
	}
	c.JSON(code, status)
}

// Ready reports whether the database answers.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.monitor.CheckOne(ctx, "mongodb"); err != nil {
		getLogger(c, h.logger).Error("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live always answers while the process serves requests.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

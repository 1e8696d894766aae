package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// ReadinessChecker is satisfied by *sql.DB.
type ReadinessChecker interface {
	PingContext(ctx context.Context) error
}

type healthHandler struct {
	checker ReadinessChecker
}

// getHealth godoc
// @Summary Liveness probe
// @Tags ops
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *healthHandler) getHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// getReady godoc
// @Summary Readiness probe
// @Description Pings the database when one is configured
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ready [get]
func (h *healthHandler) getReady(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "storage": "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := h.checker.PingContext(ctx); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Readiness check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "storage": "postgres"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "storage": "postgres"})
}

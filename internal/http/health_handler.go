package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck comprueba una dependencia; nil significa sana.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	logger   *zap.Logger
	database HealthCheck
	crawler  HealthCheck
}

func NewHealthHandler(logger *zap.Logger, database, crawler HealthCheck) *HealthHandler {
	return &HealthHandler{logger: logger, database: database, crawler: crawler}
}

// Health maneja GET /health. Solo la base de datos es crítica; el crawler se informa.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "up", "crawler": "up"}

	if h.database != nil {
		if err := h.database(ctx); err != nil {
			h.logger.Error("database health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		}
	}
	if h.crawler != nil {
		if err := h.crawler(ctx); err != nil {
			h.logger.Warn("crawler health check failed", zap.Error(err))
			body["crawler"] = "down"
		}
	}

	c.JSON(status, body)
}

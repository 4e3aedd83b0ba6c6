package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"projectflow/pkg/logger"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles the store connectivity probe
type HealthHandlers struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandlers(db Pinger) *HealthHandlers {
	return &HealthHandlers{db: db, timeout: 2 * time.Second}
}

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthCheck handles GET /health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromEcho(c).Warn("database health check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, HealthStatus{Status: "error", Database: "disconnected"})
	}
	return c.JSON(http.StatusOK, HealthStatus{Status: "ok", Database: "connected"})
}

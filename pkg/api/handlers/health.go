package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process liveness
type HealthHandler struct {
	startedAt time.Time
	provider  string
	aiEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(provider string, aiEnabled bool) *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now().UTC(),
		provider:  provider,
		aiEnabled: aiEnabled,
	}
}

// Check handles the health endpoint
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"provider":       h.provider,
		"ai_enabled":     h.aiEnabled,
	})
}

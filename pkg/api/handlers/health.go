package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	environment string
	checks      map[string]Pinger
}

// NewHealthHandler creates a new health handler; checks may be empty
func NewHealthHandler(environment string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{environment: environment, checks: checks}
}

// Root describes the running service
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":        "Scribely API",
		"version":     "0.1.0",
		"status":      "running",
		"environment": h.environment,
		"timestamp":   time.Now().Unix(),
	})
}

// Health pings every dependency
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := map[string]any{"status": "healthy"}
	status := http.StatusOK

	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp[name] = "down"
			resp["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp[name] = "up"
	}

	return c.JSON(status, resp)
}

package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readyTimeout = 5 * time.Second

// Pinger is the store connectivity check used by Ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	log   *slog.Logger
	store Pinger
}

func NewHealthController(log *slog.Logger, store Pinger) *HealthController {
	return &HealthController{log: log, store: store}
}

// Health handles GET /health.
func (h *HealthController) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready: 503 while the store is unreachable.
func (h *HealthController) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn(fmt.Sprintf("[health-controller] Store ping failed: %v", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "store unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Echo handles POST /test and returns the submitted body unchanged.
func (h *HealthController) Echo(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "Invalid request payload.")
	}

	var body any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &body); err != nil {
			return badRequest(c, "Invalid JSON body.")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Test route working",
		"body":    body,
	})
}

package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/observability"
	"github.com/iliyamo/motor-health-dashboard/internal/upstream"
)

// ProxyHandler forwards motor and pipeline control calls to their upstream
// services, echoing body and status back unchanged. Failures carry the
// upstream status when one was received, else a plain 500.
type ProxyHandler struct {
	Upstream *upstream.Client
}

func NewProxyHandler(client *upstream.Client) *ProxyHandler {
	return &ProxyHandler{Upstream: client}
}

type proxyCall func(ctx context.Context) (json.RawMessage, int, error)

// forward runs one upstream call and relays the result.
func (h *ProxyHandler) forward(c echo.Context, call proxyCall, failMsg string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	body, status, err := call(ctx)
	if err != nil {
		log.Printf("[PROXY] %s: %v", failMsg, err)
		if s := upstream.StatusOf(err); s != 0 {
			return c.JSON(s, echo.Map{"error": failMsg})
		}
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": failMsg})
	}
	return c.JSONBlob(status, body)
}

// MotorStatus relays GET /api/motor/status.
func (h *ProxyHandler) MotorStatus(c echo.Context) error {
	return h.forward(c, h.Upstream.MotorStatus, "Failed to get motor status")
}

// MotorStart relays POST /api/motor/start.
func (h *ProxyHandler) MotorStart(c echo.Context) error {
	return h.forward(c, h.Upstream.MotorStart, "Failed to start motor")
}

// MotorStop relays POST /api/motor/stop.
func (h *ProxyHandler) MotorStop(c echo.Context) error {
	return h.forward(c, h.Upstream.MotorStop, "Failed to stop motor")
}

// PipelineStatus relays GET /api/pipeline/status/:user_id.
func (h *ProxyHandler) PipelineStatus(c echo.Context) error {
	userID := c.Param("user_id")
	return h.forward(c, func(ctx context.Context) (json.RawMessage, int, error) {
		return h.Upstream.PipelineStatus(ctx, userID)
	}, "Failed to get pipeline status")
}

// PipelineStart relays POST /api/pipeline/start/:user_id.
func (h *ProxyHandler) PipelineStart(c echo.Context) error {
	userID := c.Param("user_id")
	return h.forward(c, func(ctx context.Context) (json.RawMessage, int, error) {
		return h.Upstream.PipelineStart(ctx, userID)
	}, "Failed to start pipeline")
}

// PipelineStop relays POST /api/pipeline/stop/:user_id.
func (h *ProxyHandler) PipelineStop(c echo.Context) error {
	userID := c.Param("user_id")
	return h.forward(c, func(ctx context.Context) (json.RawMessage, int, error) {
		return h.Upstream.PipelineStop(ctx, userID)
	}, "Failed to stop pipeline")
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/garage/internal/middleware"
	"github.com/deppfellow/garage/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// HealthHandler exposes the /status endpoint used by load balancers and
// uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth pings the database pool and answers 200 when it responds
// within the configured timeout, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      StatusHealthy,
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]CheckResult{},
	}

	database := h.checkDatabase(c.Request().Context())
	response.Checks["database"] = database

	if database.Status != StatusHealthy {
		response.Status = StatusUnhealthy

		logger.Warn().
			Str("error", database.Error).
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Str("database_response_time", database.ResponseTime).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	pingStart := time.Now()
	err := h.server.DB.Ping(ctx)
	elapsed := time.Since(pingStart)

	if err == nil {
		return CheckResult{Status: StatusHealthy, ResponseTime: elapsed.String()}
	}

	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
			"check_type":       "database",
			"error_type":       "database_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}

	return CheckResult{
		Status:       StatusUnhealthy,
		ResponseTime: elapsed.String(),
		Error:        err.Error(),
	}
}

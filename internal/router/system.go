package router

import (
	"github.com/deppfellow/garage/internal/handler"
	"github.com/deppfellow/garage/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints outside the record API:
// health status, the docs UI and its static assets.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	if s.Config.Observability.HealthChecks.Enabled {
		r.GET("/status", h.Health.CheckHealth)
	}

	r.Static("/static", handler.StaticDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and maps every path to its handler.
package router

import (
	"github.com/deppfellow/garage/internal/handler"
	"github.com/deppfellow/garage/internal/middleware"
	"github.com/deppfellow/garage/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain,
// the error handler and all routes.
//
// Middleware order matters: the request id must exist before the context
// enhancer builds the request logger, and the New Relic transaction must
// exist before the logger picks up trace ids.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, s, h)
	registerRecordRoutes(router, h)

	return router
}

package router

import (
	"net/http"

	"github.com/deppfellow/garage/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerRecordRoutes registers the greeting and the record endpoints.
func registerRecordRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", handler.Handle(h.Root.Handler, h.Root.Greet, http.StatusOK, &handler.EmptyRequest{}))

	r.POST("/test/", handler.Handle(h.Record.Handler, h.Record.CreateRecord, http.StatusOK, &handler.CreateRecordRequest{}))
	r.GET("/test/", handler.Handle(h.Record.Handler, h.Record.ListRecords, http.StatusOK, &handler.EmptyRequest{}))
}

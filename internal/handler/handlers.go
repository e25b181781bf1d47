package handler

import (
	"github.com/deppfellow/garage/internal/server"
	"github.com/deppfellow/garage/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one object.
type Handlers struct {
	Root    *RootHandler
	Record  *RecordHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Root:    NewRootHandler(s),
		Record:  NewRecordHandler(s, services.Record),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}

package handler

import (
	"github.com/deppfellow/garage/internal/server"
	"github.com/labstack/echo/v4"
)

// Greeting is the body of GET /.
const Greeting = "Welcome to your personal garage"

type RootHandler struct {
	Handler
}

func NewRootHandler(s *server.Server) *RootHandler {
	return &RootHandler{
		Handler: NewHandler(s),
	}
}

// Greet answers with the fixed greeting. It never touches the database.
func (h *RootHandler) Greet(c echo.Context, _ *EmptyRequest) (string, error) {
	return Greeting, nil
}

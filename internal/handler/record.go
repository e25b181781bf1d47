package handler

import (
	"github.com/deppfellow/garage/internal/middleware"
	"github.com/deppfellow/garage/internal/model"
	"github.com/deppfellow/garage/internal/server"
	"github.com/deppfellow/garage/internal/service"
	"github.com/deppfellow/garage/internal/validation"
	"github.com/labstack/echo/v4"
)

// CreateRecordRequest is the body of POST /test/.
//
// Both fields are pointers: "required" then only rejects a field that is
// absent (or null), so an empty name and year 0 are stored as given.
type CreateRecordRequest struct {
	Name *string `json:"name" validate:"required"`
	Year *int32 `json:"year" validate:"required"`
}

func (r *CreateRecordRequest) Validate() error {
	return validation.Struct(r)
}

// MessageResponse is a plain acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

type RecordHandler struct {
	Handler
	recordService *service.RecordService
}

func NewRecordHandler(s *server.Server, recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{
		Handler:       NewHandler(s),
		recordService: recordService,
	}
}

// CreateRecord inserts one record. The generated id and uuid stay
// server-side.
func (h *RecordHandler) CreateRecord(c echo.Context, req *CreateRecordRequest) (*MessageResponse, error) {
	record, err := h.recordService.CreateRecord(c.Request().Context(), *req.Name, *req.Year)
	if err != nil {
		return nil, err
	}

	middleware.GetLogger(c).Info().
		Int64("record_id", record.ID).
		Msg("record created")

	return &MessageResponse{Message: "Record created successfully"}, nil
}

// ListRecords returns every stored record.
func (h *RecordHandler) ListRecords(c echo.Context, _ *EmptyRequest) ([]model.Record, error) {
	return h.recordService.ListRecords(c.Request().Context())
}

package handler

import (
	"reflect"
	"time"

	"github.com/deppfellow/garage/internal/middleware"
	"github.com/deppfellow/garage/internal/server"
	"github.com/deppfellow/garage/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// EmptyRequest is the payload of endpoints that take no input.
//
// Handle never binds into it: whatever body or query a client sends to
// such a route is ignored, so GET / and GET /test/ cannot fail on input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

// HandlerFunc is a typed endpoint: it receives a bound and validated
// request and returns a response or an error.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful handler result.
//
// handleRequest calls it only after the handler succeeded; errors never
// reach it. Every route currently uses JSONResponseHandler.
//
// Implementations must:
//   - write the body and status (Handle)
//   - name themselves for log lines (GetOperation)
//   - add result-specific attributes to the New Relic transaction
//     (AddAttributes); txn may be nil when New Relic is disabled
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error

	// GetOperation names the handler kind in logs.
	GetOperation() string

	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes the result as JSON with a fixed status code.
//
// For slice results it also records the number of items on the New Relic
// transaction, so list endpoints show their response size in APM.
//
//	JSONResponseHandler{status: http.StatusOK}.Handle(c, records) // 200 [...]
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil || result == nil {
		return
	}
	if v := reflect.ValueOf(result); v.Kind() == reflect.Slice {
		txn.AddAttribute("response.items", v.Len())
	}
}

// newRequest allocates a fresh payload of the prototype's type so
// concurrent requests never bind into the same value.
func newRequest[Req validation.Validatable](prototype Req) Req {
	t := reflect.TypeOf(prototype)
	if t != nil && t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface().(Req)
	}
	return prototype
}

// handleRequest is the shared execution pipeline for all handlers.
//
// Steps, in order:
//  1. Tag the New Relic transaction (if any) with the route.
//  2. Bind the request into req and run its Validate method. Routes
//     taking an *EmptyRequest skip this step. A failure here is returned
//     as-is (an *errs.HTTPError with status 422) and the handler never
//     runs.
//  3. Run the handler, timing it.
//  4. On error, log and notice it, then return it for GlobalErrorHandler.
//  5. On success, record timings and let responseHandler write the result.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("route", route).
		Logger()

	logger.Info().Msg("handling request")

	validationStart := time.Now()
	if err := bindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// bindAndValidate binds and validates req unless the route takes no input.
func bindAndValidate[Req validation.Validatable](c echo.Context, req Req) error {
	if _, ok := any(req).(*EmptyRequest); ok {
		return nil
	}
	return validation.BindAndValidate(c, req)
}

// Handle adapts a typed handler into an echo.HandlerFunc.
//
// The returned function runs the whole pipeline of handleRequest around
// handler: binding and validation, request-scoped logging, New Relic
// attributes and timing. The handler itself only sees a bound, valid
// request and returns either a result, written with status, or an error,
// which GlobalErrorHandler turns into the JSON error body.
//
// req is only a prototype that fixes the request type: every call binds
// into a fresh value of that type, so concurrent requests never share
// state and nothing from an earlier request leaks into a later one.
//
//	r.POST("/test/", handler.Handle(h.Handler, h.CreateRecord, http.StatusOK, &CreateRecordRequest{}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

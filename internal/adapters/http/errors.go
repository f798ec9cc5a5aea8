package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/go-mdc/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-mdc/internal/platform/logging"
)

// RespondWithErrorCode writes an error response with a specific error code.
// The HTTP status is derived from the code. Internal errors are logged with
// full details; the response body stays generic to avoid leaking internals.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message)
	attachTraceID(c, errResp)

	status := dto.HTTPStatusFromCode(code)
	if status == http.StatusInternalServerError {
		logger := logging.FromContext(c.Request.Context())
		logger.ErrorContext(c.Request.Context(), "internal error",
			"error", message,
		)

		errResp.Error.Message = "an internal error occurred"
	}

	c.JSON(status, errResp)
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	errResp := dto.NewErrorResponseWithDetails(
		dto.ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	)
	attachTraceID(c, errResp)

	c.JSON(http.StatusBadRequest, errResp)
}

// AbortWithErrorCode aborts the request chain with a specific error code.
// Use this in middleware when you want to stop further processing.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message)
	attachTraceID(c, errResp)

	status := dto.HTTPStatusFromCode(code)
	c.AbortWithStatusJSON(status, errResp)
}

// attachTraceID adds the OpenTelemetry trace ID to the response if available.
func attachTraceID(c *gin.Context, errResp *dto.ErrorResponse) {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		errResp.TraceID = span.SpanContext().TraceID().String()
	}
}

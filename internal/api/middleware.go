package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/domain/fault"
)

// ErrorResponse is the uniform error body for every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandlingMiddleware recovers panics and maps fault kinds onto HTTP
// status codes. Handlers attach errors with c.Error and return.
func ErrorHandlingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "internal_error",
					Message: "an internal error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			logger.Error("request error",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			status, body := toErrorResponse(err)
			c.JSON(status, body)
		}
	}
}

func toErrorResponse(err error) (int, ErrorResponse) {
	var f *fault.Fault
	if !errors.As(err, &f) {
		return http.StatusInternalServerError, ErrorResponse{
			Code:    "internal_error",
			Message: "an error occurred while processing the request",
			Details: err.Error(),
		}
	}

	status := http.StatusInternalServerError
	switch f.Kind() {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindStateTransition, fault.KindConflict:
		status = http.StatusConflict
	case fault.KindImmutableField:
		status = http.StatusUnprocessableEntity
	case fault.KindAdapterSync, fault.KindInvocation:
		status = http.StatusBadGateway
	}
	return status, ErrorResponse{
		Code:    f.Code(),
		Message: f.Message(),
	}
}

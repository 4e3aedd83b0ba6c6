package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/metrics"
	"projectflow/pkg/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func statusFor(kind common.Kind) int {
	switch kind {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindUnauthenticated:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindConflict:
		return http.StatusConflict
	case common.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {success:false, message}. Internal
// failures are logged with their cause and shown with a generic message.
func ErrorHandler(m *metrics.Metrics) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			message string
			code    string
		)
		var appErr *common.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status, message, code = statusFor(appErr.Kind), appErr.Message, appErr.Code
			if appErr.Kind == common.KindInternal {
				logger.FromEcho(c).Error("request failed", zap.Error(err))
			}
		case errors.As(err, &httpErr):
			status, code = httpErr.Code, fmt.Sprintf("HTTP_%d", httpErr.Code)
			message = http.StatusText(status)
			if status == http.StatusBadRequest {
				message = "Invalid request format"
			} else if s, ok := httpErr.Message.(string); ok && status < http.StatusInternalServerError {
				message = s
			}
		default:
			status, message, code = http.StatusInternalServerError, "Internal server error", "INTERNAL"
			logger.FromEcho(c).Error("request failed", zap.Error(err))
		}

		if m != nil {
			m.ObserveError(code)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Envelope{Success: false, Message: message})
		}
		if err != nil {
			logger.FromEcho(c).Error("failed to write error response", zap.Error(err))
		}
	}
}

func identity(c echo.Context) (authz.Identity, error) {
	return authz.FromContext(c.Request().Context())
}

// pathID parses a UUID path parameter.
func pathID(c echo.Context, name, field string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), field)
	if err != nil {
		return uuid.Nil, common.ValidationError(err.Error())
	}
	return id, nil
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return common.ValidationError("Invalid request format")
	}
	return c.Validate(req)
}

package handlers

import (
	"fmt"
	"net/http"

	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StatusOf maps an error code to its HTTP status.
func StatusOf(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidArgument, apperrors.CodeAlreadyExists, apperrors.CodeFailedPrecondition:
		return http.StatusBadRequest
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewHTTPErrorHandler renders every error as the failure envelope. Only
// internal errors are logged.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := echo.Map{"success": false, "message": "Internal server error"}

		var appErr *apperrors.AppError
		var httpErr *echo.HTTPError
		switch {
		case apperrors.As(err, &appErr):
			status = StatusOf(appErr.Code)
			if status != http.StatusInternalServerError {
				body["message"] = appErr.Message
			}
			if len(appErr.Fields) > 0 {
				body["error"] = appErr.Fields
			}
		case apperrors.As(err, &httpErr):
			status = httpErr.Code
			body["message"] = fmt.Sprint(httpErr.Message)
			if m, ok := httpErr.Message.(string); ok {
				body["message"] = m
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("failed to write error response", zap.Error(err))
		}
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorBody is the error member of the response envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// OK writes {"data": data}.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"data": data})
}

// Fail writes {"error": {"message", "code"}}.
func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": ErrorBody{Message: message, Code: code}})
}

// NoContent answers 204.
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

var statusCodes = map[int]string{
	http.StatusBadRequest:            "BAD_REQUEST",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "RATE_LIMITED",
}

// HTTPErrorHandler renders errors that escape handlers (routing misses,
// binder failures, panics) in the envelope form.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}
		code, ok := statusCodes[status]
		if !ok {
			code = "INTERNAL"
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = Fail(c, status, code, message)
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

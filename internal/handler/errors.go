package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Fixed client-facing messages per status. Causes never leave the server.
var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad request!",
	http.StatusNotFound:            "Resource not found!",
	http.StatusMethodNotAllowed:    "Method not allowed!",
	http.StatusUnprocessableEntity: "Unprocessable!",
	http.StatusTooManyRequests:     "Too many requests!",
	http.StatusInternalServerError: "Internal Server Error!",
}

// HTTPErrorHandler renders every error as an ErrorResponse
func HTTPErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", code,
				"err", err,
			)
		} else {
			logger.Debug("request rejected", "uri", c.Request().RequestURI, "status", code, "err", err)
		}

		message, ok := errorMessages[code]
		if !ok {
			message = http.StatusText(code)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, ErrorResponse{
				Success: false,
				Error:   code,
				Message: message,
			})
		}
		if err != nil {
			logger.Error("failed to write error response", "err", err)
		}
	}
}

// httpError maps a service error kind to its status code
func httpError(err error) *echo.HTTPError {
	var code int
	switch {
	case errors.Is(err, service.ErrBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrUnprocessable):
		code = http.StatusUnprocessableEntity
	default:
		code = http.StatusInternalServerError
	}
	return echo.NewHTTPError(code).SetInternal(err)
}

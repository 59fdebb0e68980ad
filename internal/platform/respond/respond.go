// Package respond renders the {status, message, data} envelope every
// endpoint speaks.
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/platform/apperr"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

// Error renders err with the status code its kind maps to. Handlers return
// this directly so the envelope is written even when middleware short-circuits.
func Error(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), Envelope{
		Status:  "error",
		Message: apperr.MessageOf(err),
	})
}

// HTTPErrorHandler is the echo error handler for errors that escape
// handlers: it maps apperr kinds (and echo.HTTPError from middleware) to the
// envelope, logging internal errors with their hidden cause.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperr.HTTPStatus(err)
		message := apperr.MessageOf(err)

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, Envelope{Status: "error", Message: message})
	}
}

package server

import (
	"errors"
	"evcharge-storefront/internal/apperror"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string `json:"message"`
}

// errorHandler writes {"message": ...} with a client-safe message and logs
// the full error chain.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var he *echo.HTTPError
	if ae, ok := apperror.As(err); ok {
		status = ae.HTTPStatus()
		message = ae.Message
	} else if errors.As(err, &he) {
		status = he.Code
		message = http.StatusText(status)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
	}

	log := zerolog.Ctx(c.Request().Context())
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("path", c.Path()).Msg("request failed")

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Message: message})
	}
	if err != nil {
		log.Error().Err(err).Msg("write error response")
	}
}

package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// HTTPErrorHandler returns an echo error handler that translates classified
// errors to their single HTTP status and downgrades everything unanticipated
// to a 500 with a truncated message, so an unexpected store error never
// crashes the request handler or leaks internal text.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "error interno del servidor"

		var appErr *E
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = Status(appErr)
			detail = appErr.Message
			if status == http.StatusInternalServerError {
				// Internal and validation failures log the full chain but
				// report only the bounded message.
				logger.Error().Err(err).Str("path", c.Path()).Msg("internal error")
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				detail = Truncate(msg)
			}
		default:
			detail = Truncate("error interno del servidor")
			logger.Error().Err(err).Str("path", c.Path()).Msg("unclassified error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorBody{Detail: detail})
	}
}

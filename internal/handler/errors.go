package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/service"
)

// statusOf maps service error kinds onto HTTP statuses.
var statusOf = []struct {
	kind   error
	status int
}{
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrAuthFailed, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrTooManyRequests, http.StatusTooManyRequests},
}

// HTTPErrorHandler renders every error as {"message": ...}.  Unknown
// errors are logged and answered with a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, "internal server error"

	var he *echo.HTTPError
	var se *service.Error
	switch {
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
	case errors.As(err, &se):
		for _, m := range statusOf {
			if errors.Is(se.Kind, m.kind) {
				status, msg = m.status, se.Msg
				break
			}
		}
	}
	if status >= http.StatusInternalServerError {
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"message": msg})
	}
	if err != nil {
		log.Ctx(c.Request().Context()).Warn().Err(err).Msg("write error response")
	}
}

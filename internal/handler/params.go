package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/middleware"
	"github.com/iliyamo/gymhub/internal/model"
)

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

// currentUser returns the authenticated caller.  Routes using it sit behind
// middleware.Authenticate; the 401 covers misrouted handlers.
func currentUser(c echo.Context) (model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return model.User{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return u, nil
}

// optionalUser returns the caller when AuthenticateOptional found one.
func optionalUser(c echo.Context) *model.User {
	if u, ok := middleware.CurrentUser(c); ok {
		return &u
	}
	return nil
}

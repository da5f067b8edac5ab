package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/model"
)

// RequireRole aborts with 403 unless the authenticated user's role set
// satisfies required.  Admin satisfies an owner requirement.  It must run
// after Authenticate.
func RequireRole(required model.Roles) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if !u.Roles.Satisfies(required) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}

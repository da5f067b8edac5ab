package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identity names the caller for rate limit keys: the user id when
// authenticated, "anon" otherwise.
func identity(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}

// hasCredentials reports whether the request carries any access token,
// valid or not.  Such responses may be personalised and are not cached.
func hasCredentials(c echo.Context) bool {
	return accessToken(c) != ""
}

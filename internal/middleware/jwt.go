package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
	"github.com/iliyamo/gymhub/internal/utils"
)

// AccessCookie is the http-only cookie carrying the access token.
const AccessCookie = "accessToken"

const userKey = "user"

// UserLoader is the part of the user store the gateway needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate resolves the caller from the bearer header, falling back to
// the access cookie.  The loaded user is stored on the context without
// password hash or one-time codes.  Any failure ends the request with 401.
func Authenticate(tokens *utils.TokenIssuer, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			u, err := resolve(c, tokens, users, raw)
			if err != nil {
				if errors.Is(err, errUnauthorized) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
				}
				return err
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

// AuthenticateOptional attaches the caller when a valid token is present
// and otherwise continues as a guest.  It never fails the request.
func AuthenticateOptional(tokens *utils.TokenIssuer, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := accessToken(c); raw != "" {
				u, err := resolve(c, tokens, users, raw)
				switch {
				case err == nil:
					c.Set(userKey, u)
				case !errors.Is(err, errUnauthorized):
					log.Ctx(c.Request().Context()).Warn().Err(err).Msg("optional auth: load user")
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}

var errUnauthorized = errors.New("unauthorized")

func resolve(c echo.Context, tokens *utils.TokenIssuer, users UserLoader, raw string) (model.User, error) {
	claims, err := tokens.VerifyAccess(raw)
	if err != nil {
		return model.User{}, errUnauthorized
	}
	u, err := users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, errUnauthorized
		}
		return model.User{}, err
	}
	u.PasswordHash = nil
	u.OTPCode, u.OTPExpires = nil, nil
	u.ResetCode, u.ResetExpires = nil, nil
	return u, nil
}

func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

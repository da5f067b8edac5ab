package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gymhub/internal/config"
	"github.com/iliyamo/gymhub/internal/memstore"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/utils"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type gateway struct {
	tokens *utils.TokenIssuer
	users  *memstore.Users
}

func newGateway() gateway {
	return gateway{
		tokens: utils.NewTokenIssuer("access-secret", "refresh-secret"),
		users:  memstore.New().Users(),
	}
}

func (g gateway) seed(t *testing.T, roles model.Roles) (model.User, string) {
	t.Helper()
	hash := "$2a$04$hash"
	u := g.users.Put(model.User{Email: "m@example.com", PasswordHash: &hash, Roles: roles, Name: "Mira"})
	tok, err := g.tokens.IssueAccessToken(u)
	require.NoError(t, err)
	return u, tok.Token
}

func whoami(c echo.Context) error {
	u, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"guest": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "hash_stripped": u.PasswordHash == nil})
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	g := newGateway()
	u, token := g.seed(t, model.RoleUser)

	e := echo.New()
	e.GET("/me", whoami, Authenticate(g.tokens, g.users))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := serve(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"hash_stripped":true`)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
		assert.Equal(t, http.StatusOK, serve(e, req).Code)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"authentication required"}`, rec.Body.String())
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		rt, err := g.tokens.IssueRefreshToken(u)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+rt.Token)
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})

	t.Run("user gone", func(t *testing.T) {
		ghost, err := g.tokens.IssueAccessToken(model.User{ID: 9999, Roles: model.RoleUser})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+ghost.Token)
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})
}

func TestAuthenticateOptional(t *testing.T) {
	g := newGateway()
	u, token := g.seed(t, model.RoleUser)

	e := echo.New()
	e.GET("/gyms", whoami, AuthenticateOptional(g.tokens, g.users))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/gyms", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"guest":true}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/gyms", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code, "invalid token degrades to guest")
	assert.JSONEq(t, `{"guest":true}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/gyms", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":`+strconv.FormatUint(u.ID, 10))
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		roles    model.Roles
		required model.Roles
		want     int
	}{
		{"owner on owner route", model.RoleOwner, model.RoleOwner, http.StatusOK},
		{"admin satisfies owner", model.RoleAdmin, model.RoleOwner, http.StatusOK},
		{"member on owner route", model.RoleUser, model.RoleOwner, http.StatusForbidden},
		{"owner on admin route", model.RoleOwner, model.RoleAdmin, http.StatusForbidden},
		{"multi-role admin", model.RoleUser | model.RoleAdmin, model.RoleAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGateway()
			_, token := g.seed(t, tc.roles)
			e := echo.New()
			e.GET("/x", whoami, Authenticate(g.tokens, g.users), RequireRole(tc.required))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			assert.Equal(t, tc.want, serve(e, req).Code)
		})
	}
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, RequireRole(model.RoleUser))
	assert.Equal(t, http.StatusUnauthorized, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestTokenBucket(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		return serve(e, req)
	}

	first := login()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, login().Code)

	blocked := login()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), `"message":"rate limit exceeded"`)

	other := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(e, other).Code, "buckets are per ip")
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestRedisCache(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: []string{"get"}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}

	calls := 0
	e := echo.New()
	e.GET("/plans/gym/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"gym": c.Param("id"), "calls": calls})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, httptest.NewRequest(http.MethodGet, "/plans/gym/7", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, httptest.NewRequest(http.MethodGet, "/plans/gym/7", nil))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	serve(e, httptest.NewRequest(http.MethodGet, "/plans/gym/8", nil))
	assert.Equal(t, 2, calls, "different path is a different key")

	withToken := httptest.NewRequest(http.MethodGet, "/plans/gym/7", nil)
	withToken.Header.Set(echo.HeaderAuthorization, "Bearer anything")
	rec := serve(e, withToken)
	assert.Empty(t, rec.Header().Get("X-Cache"), "credentialed requests bypass the cache")
	assert.Equal(t, 3, calls)
}

func TestRedisCache_HitCarriesOnlyCurrentRequestID(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}
	n := 0
	e := echo.New()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string {
		n++
		return "req-" + strconv.Itoa(n)
	}}))
	e.GET("/gyms", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{"Iron Temple"})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, httptest.NewRequest(http.MethodGet, "/gyms", nil))
	assert.Equal(t, []string{"req-1"}, first.Header().Values(echo.HeaderXRequestID))

	second := serve(e, httptest.NewRequest(http.MethodGet, "/gyms", nil))
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, []string{"req-2"}, second.Header().Values(echo.HeaderXRequestID))
}

func TestRedisCache_SkipsErrors(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}
	calls := 0
	e := echo.New()
	e.GET("/gyms/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"message": "gym not found"})
	}, NewRedisCache(cfg, rdb))

	serve(e, httptest.NewRequest(http.MethodGet, "/gyms/1", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/gyms/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/boom/:id", func(c echo.Context) error {
		log.Ctx(c.Request().Context()).Info().Msg("inside")
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom/1", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"message":"inside"`, "handler logs through the request logger")
	assert.Contains(t, out, `"route":"/boom/:id"`)
	assert.Contains(t, out, `"status":418`)
}

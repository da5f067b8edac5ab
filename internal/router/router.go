// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/gymhub/internal/config"
	"github.com/iliyamo/gymhub/internal/handler"
	"github.com/iliyamo/gymhub/internal/metrics"
	"github.com/iliyamo/gymhub/internal/middleware"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/utils"
)

// Deps bundles what the routes need.  Redis may be nil, which disables
// rate limiting and caching.  DB may be nil, which keeps /readyz at 503.
type Deps struct {
	Cfg    config.Config
	Tokens *utils.TokenIssuer
	Users  middleware.UserLoader
	Redis  *redis.Client
	DB     handler.Pinger

	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Bookings *handler.BookingHandler
	Payouts  *handler.PayoutHandler
	Reviews  *handler.ReviewHandler
	Tickets  *handler.TicketHandler
	Reports  *handler.ReportHandler
}

func (d Deps) authn() echo.MiddlewareFunc {
	return middleware.Authenticate(d.Tokens, d.Users)
}

func (d Deps) requires(r model.Roles) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{d.authn(), middleware.RequireRole(r)}
}

// Register mounts every route group.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d)
	RegisterPublic(e, d)
	RegisterOwner(e, d)
	RegisterOwnerBookings(e, d)
	RegisterCustomer(e, d)
	RegisterAdmin(e, d)
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth mounts /auth behind the Redis token bucket.  Only the
// profile endpoints require a session.
func RegisterAuth(e *echo.Echo, d Deps) {
	a := d.Auth
	g := e.Group("/auth", middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google", a.Google)
	g.POST("/verify-otp", a.VerifyOTP)
	g.POST("/resend-otp", a.ResendOTP)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	g.GET("/me", a.Me, d.authn())
	g.PUT("/me", a.UpdateMe, d.authn())
}

// RegisterPublic mounts the browse endpoints guests may call.  Catalog
// reads go through the Redis response cache; bookings accept guests and
// link signed-in buyers.
func RegisterPublic(e *echo.Echo, d Deps) {
	cache := middleware.NewRedisCache(d.Cfg.Cache, d.Redis)
	optional := middleware.AuthenticateOptional(d.Tokens, d.Users)

	e.GET("/gyms", d.Catalog.ListGyms, cache, optional)
	e.GET("/gyms/:id", d.Catalog.GetGym, cache)
	e.GET("/plans/gym/:id", d.Catalog.ListPlans, cache)
	e.GET("/reviews/gym/:id", d.Reviews.ListByGym, cache)

	e.POST("/bookings", d.Bookings.Create, optional)
}

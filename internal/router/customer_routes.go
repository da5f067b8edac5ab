package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterCustomer registers endpoints for any signed-in account: own
// bookings, reviews of completed bookings and support tickets.
func RegisterCustomer(e *echo.Echo, d Deps) {
	authn := d.authn()
	e.GET("/bookings/me", d.Bookings.ListMine, authn)
	e.POST("/reviews", d.Reviews.Create, authn)
	e.POST("/tickets", d.Tickets.Create, authn)
	e.GET("/tickets/me", d.Tickets.ListMine, authn)
}

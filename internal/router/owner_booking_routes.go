package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/model"
)

// RegisterOwnerBookings registers the routes owners use to follow and
// move the bookings of their gyms through the lifecycle.
func RegisterOwnerBookings(e *echo.Echo, d Deps) {
	owner := d.requires(model.RoleOwner)
	e.GET("/bookings/gym/:id", d.Bookings.ListByGym, owner...)
	e.PATCH("/bookings/:id/status", d.Bookings.UpdateStatus, owner...)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/model"
)

// RegisterAdmin registers platform administration: payout processing,
// review moderation and ticket replies.
func RegisterAdmin(e *echo.Echo, d Deps) {
	admin := d.requires(model.RoleAdmin)
	e.GET("/payouts/admin", d.Payouts.AdminList, admin...)
	e.PUT("/payouts/admin/:id", d.Payouts.AdminUpdate, admin...)
	e.DELETE("/reviews/:id", d.Reviews.Delete, admin...)
	e.GET("/tickets/admin", d.Tickets.AdminList, admin...)
	e.PUT("/tickets/admin/:id", d.Tickets.AdminReply, admin...)
}

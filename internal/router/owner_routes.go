package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/model"
)

// RegisterOwner registers gym owner endpoints: catalog management, payouts
// and reporting.  Admin satisfies the owner requirement; the services
// still check gym ownership for non-admins.
func RegisterOwner(e *echo.Echo, d Deps) {
	owner := d.requires(model.RoleOwner)

	// ---- Gyms ----
	e.GET("/gyms/mine", d.Catalog.MyGyms, owner...)
	e.POST("/gyms", d.Catalog.CreateGym, owner...)
	e.PUT("/gyms/:id", d.Catalog.UpdateGym, owner...)

	// ---- Plans ----
	e.POST("/plans", d.Catalog.CreatePlan, owner...)
	e.PUT("/plans/:id", d.Catalog.UpdatePlan, owner...)
	e.DELETE("/plans/:id", d.Catalog.DeletePlan, owner...)

	// ---- Payouts ----
	e.GET("/payouts/balance/:gymId", d.Payouts.Balance, owner...)
	e.POST("/payouts/request", d.Payouts.Request, owner...)
	e.GET("/payouts/gym/:gymId", d.Payouts.ListByGym, owner...)

	// ---- Reports ----
	e.GET("/dashboard/stats", d.Reports.Dashboard, owner...)
	e.GET("/accounting/ledger/:gymId", d.Reports.Ledger, owner...)
}

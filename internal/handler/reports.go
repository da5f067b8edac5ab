package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

// ReportHandler serves the dashboard figures and the per-gym accounting
// ledger.
type ReportHandler struct {
	Svc *service.ReportService
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.Svc.Dashboard(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) Ledger(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	gymID, err := pathID(c, "gymId")
	if err != nil {
		return err
	}
	l, err := h.Svc.Ledger(c.Request().Context(), u, gymID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

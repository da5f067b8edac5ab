package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

type PayoutHandler struct {
	Svc *service.PayoutService
}

type payoutReq struct {
	GymID       uint64 `json:"gym_id"`
	AmountCents int64  `json:"amount_cents"`
}

type payoutUpdateReq struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

func (h *PayoutHandler) Balance(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	gymID, err := pathID(c, "gymId")
	if err != nil {
		return err
	}
	b, err := h.Svc.Balance(c.Request().Context(), u, gymID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Request creates a Pending payout if the gym's available balance covers
// the amount; 422 otherwise.
func (h *PayoutHandler) Request(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req payoutReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.RequestPayout(c.Request().Context(), u, req.GymID, req.AmountCents)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PayoutHandler) ListByGym(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	gymID, err := pathID(c, "gymId")
	if err != nil {
		return err
	}
	list, err := h.Svc.ListByGym(c.Request().Context(), u, gymID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PayoutHandler) AdminList(c echo.Context) error {
	list, err := h.Svc.AdminList(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PayoutHandler) AdminUpdate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req payoutUpdateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.AdminUpdate(c.Request().Context(), id, req.Status, req.AdminNote)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

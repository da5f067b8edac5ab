package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

type BookingHandler struct {
	Svc *service.BookingService
}

type statusReq struct {
	Status string `json:"status"`
}

// Create books a plan.  Guests may book; a signed-in buyer is linked to
// the booking and supplies default member details.
func (h *BookingHandler) Create(c echo.Context) error {
	var in service.BookingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	b, err := h.Svc.Create(c.Request().Context(), optionalUser(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) ListByGym(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	gymID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Svc.ListByGym(c.Request().Context(), u, gymID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) ListMine(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.ListMine(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.UpdateStatus(c.Request().Context(), u, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

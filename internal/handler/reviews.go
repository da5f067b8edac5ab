package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

type ReviewHandler struct {
	Svc *service.ReviewService
}

func (h *ReviewHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in service.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.Svc.Create(c.Request().Context(), u, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReviewHandler) ListByGym(c echo.Context) error {
	gymID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Svc.ListByGym(c.Request().Context(), gymID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

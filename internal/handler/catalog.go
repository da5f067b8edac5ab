package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

// CatalogHandler serves gyms and membership plans.
type CatalogHandler struct {
	Svc *service.CatalogService
}

// ListGyms returns active gyms, optionally filtered by ?city.  Owners see
// which of them they own.
func (h *CatalogHandler) ListGyms(c echo.Context) error {
	gyms, err := h.Svc.ListGyms(c.Request().Context(), strings.TrimSpace(c.QueryParam("city")), optionalUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gyms)
}

func (h *CatalogHandler) MyGyms(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	gyms, err := h.Svc.MyGyms(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gyms)
}

func (h *CatalogHandler) GetGym(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	g, err := h.Svc.GetGym(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (h *CatalogHandler) ListPlans(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	plans, err := h.Svc.ListPlans(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *CatalogHandler) CreateGym(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in service.GymInput
	if err := bind(c, &in); err != nil {
		return err
	}
	g, err := h.Svc.CreateGym(c.Request().Context(), u, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *CatalogHandler) UpdateGym(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.GymInput
	if err := bind(c, &in); err != nil {
		return err
	}
	g, err := h.Svc.UpdateGym(c.Request().Context(), u, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (h *CatalogHandler) CreatePlan(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var in service.PlanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Svc.CreatePlan(c.Request().Context(), u, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdatePlan(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.PlanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.Svc.UpdatePlan(c.Request().Context(), u, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePlan deactivates the plan; existing bookings keep referencing it.
func (h *CatalogHandler) DeletePlan(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeletePlan(c.Request().Context(), u, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/service"
)

// TicketHandler serves support tickets: users open and list their own,
// admins list all and reply.
type TicketHandler struct {
	Svc *service.TicketService
}

type ticketReq struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ticketReplyReq struct {
	Status     string `json:"status"`
	AdminReply string `json:"admin_reply"`
}

func (h *TicketHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ticketReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.Svc.Create(c.Request().Context(), u, req.Subject, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) ListMine(c echo.Context) error {
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

func (h *TicketHandler) AdminList(c echo.Context) error {
	list, err := h.Svc.AdminList(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *TicketHandler) AdminReply(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ticketReplyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.Svc.AdminReply(c.Request().Context(), id, req.Status, req.AdminReply)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

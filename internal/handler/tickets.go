package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// TicketHandler lists the current customer's tickets.
type TicketHandler struct {
	Tickets *repository.TicketRepo
	Timeout time.Duration
}

func NewTicketHandler(t *repository.TicketRepo, timeout time.Duration) *TicketHandler {
	return &TicketHandler{Tickets: t, Timeout: timeout}
}

// MyTickets GET /v1/my-tickets, latest show first.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	ts, err := h.Tickets.ListByCustomer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toTicketViews(ts)})
}

// GetTicket GET /v1/tickets/:id. Other customers' tickets are reported as
// not found.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	t, err := h.Tickets.GetByIDForCustomer(ctx, c.Param("id"), uid)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load ticket"})
	}
	return c.JSON(http.StatusOK, toTicketView(*t))
}

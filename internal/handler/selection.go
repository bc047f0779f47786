package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// SelectionHandler exposes the seat selection workflow of the current user.
type SelectionHandler struct {
	Selections *service.SelectionService
	Log        *logrus.Logger
	Timeout    time.Duration
}

func NewSelectionHandler(s *service.SelectionService, log *logrus.Logger, timeout time.Duration) *SelectionHandler {
	return &SelectionHandler{Selections: s, Log: log, Timeout: timeout}
}

type countReq struct {
	Count int `json:"count" validate:"required,min=1,max=10"`
}

type toggleReq struct {
	Class string `json:"class" validate:"required"`
	Seat  int    `json:"seat"` // range checked by the selection
}

// bookingError maps booking and selection errors to HTTP responses.
func bookingError(c echo.Context, log *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSelectionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrOutOfRange),
		errors.Is(err, booking.ErrInvalidSeatClass),
		errors.Is(err, booking.ErrInvalidSeatCount),
		errors.Is(err, booking.ErrIncompleteSelection),
		errors.Is(err, booking.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidPayment):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrShowingStarted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrBookingFailed):
		log.WithError(err).Error("booking failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed, please retry", "retryable": true})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	default:
		log.WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func (h *SelectionHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Open POST /v1/showings/:id/selection {"count": n}
// Any selection the user had open is replaced.
func (h *SelectionHandler) Open(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var req countReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	sel, err := h.Selections.Open(ctx, uid, showingID, req.Count)
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toSelectionView(sel))
}

// Get GET /v1/selection
func (h *SelectionHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	sel, err := h.Selections.Get(ctx, uid)
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toSelectionView(sel))
}

// SetCount PUT /v1/selection/count {"count": n}
func (h *SelectionHandler) SetCount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req countReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	sel, err := h.Selections.SetCount(ctx, uid, req.Count)
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toSelectionView(sel))
}

// Toggle POST /v1/selection/seats {"class": "GOLD", "seat": 4}
// A full selection is reported with "full": true and status 200.
func (h *SelectionHandler) Toggle(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req toggleReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	class, err := booking.ParseSeatClass(req.Class)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, sel, err := h.Selections.Toggle(ctx, uid, class, req.Seat)
	if errors.Is(err, booking.ErrSelectionFull) {
		return c.JSON(http.StatusOK, echo.Map{
			"full":      true,
			"message":   err.Error(),
			"selection": toSelectionView(sel),
		})
	}
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": res, "full": false, "selection": toSelectionView(sel)})
}

// Cancel DELETE /v1/selection
func (h *SelectionHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Selections.Cancel(ctx, uid); err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout POST /v1/selection/checkout with payment details.
// Seats sold meanwhile yield 409 with the refreshed selection.
func (h *SelectionHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.PaymentDetails
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	ticket, sel, err := h.Selections.Checkout(ctx, uid, req)
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     booking.ErrSeatConflict.Error(),
			"taken":     conflict.Seats,
			"selection": toSelectionView(sel),
		})
	}
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toTicketView(*ticket))
}

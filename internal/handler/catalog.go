package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

const maxPageSize = 50

// CatalogHandler serves the public movie, showtime and seat map endpoints.
type CatalogHandler struct {
	Movies    *repository.MovieRepo
	Schedules *repository.ScheduleRepo
	Bookings  *service.BookingService
	Log       *logrus.Logger
	Loc       *time.Location
	Timeout   time.Duration
	Now       func() time.Time
}

func NewCatalogHandler(m *repository.MovieRepo, s *repository.ScheduleRepo, b *service.BookingService, log *logrus.Logger, loc *time.Location, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{Movies: m, Schedules: s, Bookings: b, Log: log, Loc: loc, Timeout: timeout, Now: time.Now}
}

func (h *CatalogHandler) now() time.Time { return h.Now().In(h.Loc) }

// ListMovies GET /v1/movies?title=&page=&page_size=
// Movies are listed while their last show date has not passed.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	page := parsePositiveInt(c.QueryParam("page"), 1)
	size := min(parsePositiveInt(c.QueryParam("page_size"), 20), maxPageSize)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	rows, total, err := h.Movies.SearchNowShowing(ctx, repository.MovieSearchQuery{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Today:    h.now().Format(model.DateLayout),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		h.Log.WithError(err).Error("search movies failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list movies"})
	}
	items := make([]movieView, len(rows))
	for i, m := range rows {
		items[i] = toMovieView(m)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "page": page, "page_size": size, "total": total})
}

// GetMovie GET /v1/movies/:id
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	m, err := h.Movies.GetSummary(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}
	return c.JSON(http.StatusOK, toMovieView(*m))
}

// ListShowings GET /v1/movies/:id/showings?date=YYYY-MM-DD
// The date defaults to today and must lie in the movie's playing window.
// For today only showings that have not started are returned.
func (h *CatalogHandler) ListShowings(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	now := h.now()
	today := now.Format(model.DateLayout)
	date := today
	if raw := c.QueryParam("date"); raw != "" {
		d, err := model.ParseShowDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		date = d
	}
	if date < today {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	m, err := h.Movies.GetSummary(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}
	if date < m.StartDate || date > m.StopDate {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":      "date outside the movie's playing window",
			"start_date": m.StartDate,
			"stop_date":  m.StopDate,
		})
	}

	showings, err := h.Schedules.ListByMovieOnDate(ctx, id, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list showings"})
	}
	out := make([]showingView, 0, len(showings))
	for _, s := range showings {
		if date == today {
			starts, err := s.StartsAt(h.Loc)
			if err != nil || !starts.After(now) {
				continue
			}
		}
		out = append(out, toShowingView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_id": id, "date": date, "showings": out})
}

// SeatMap GET /v1/showings/:id/seats
func (h *CatalogHandler) SeatMap(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	showing, layout, err := h.Bookings.LoadShowing(ctx, id)
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	booked, err := h.Bookings.BookedSeats(ctx, showing)
	if err != nil {
		return bookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showing":   toShowingView(*showing),
		"layout":    layout,
		"booked":    booked,
		"available": layout.Capacity - booked.Len(),
		"prices": echo.Map{
			"gold":            booking.GoldPrice.String(),
			"standard":        booking.StandardPrice.String(),
			"convenience_fee": booking.ConveniencePerTicket.String(),
		},
	})
}

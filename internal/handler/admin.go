package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// maxRunDays caps how many consecutive days one add-movie request schedules.
const maxRunDays = 60

// AdminHandler manages screens, movies and showings.
type AdminHandler struct {
	Screens   *repository.ScreenRepo
	Movies    *repository.MovieRepo
	Schedules *repository.ScheduleRepo
	Tickets   *repository.TicketRepo
	Log       *logrus.Logger
	Timeout   time.Duration

	// OnCatalogChange runs after every successful write, e.g. to purge
	// cached catalog responses. May be nil.
	OnCatalogChange func(ctx context.Context)
}

func NewAdminHandler(screens *repository.ScreenRepo, movies *repository.MovieRepo, schedules *repository.ScheduleRepo, tickets *repository.TicketRepo, log *logrus.Logger, timeout time.Duration) *AdminHandler {
	return &AdminHandler{Screens: screens, Movies: movies, Schedules: schedules, Tickets: tickets, Log: log, Timeout: timeout}
}

type createScreenReq struct {
	Name          string `json:"name" validate:"required,max=100"`
	ScreenNumber  int    `json:"screen_number" validate:"required,min=1"`
	NumberOfSeats int    `json:"number_of_seats" validate:"required,min=1,max=1000"`
}

type createMovieReq struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	PosterURL   string   `json:"poster_url" validate:"omitempty,url,max=500"`
	ScreenID    uint64   `json:"screen_id" validate:"required"`
	ReleaseDate string   `json:"release_date" validate:"required"`
	Days        int      `json:"days" validate:"omitempty,min=1,max=60"`
	ShowTimes   []string `json:"show_times" validate:"required,min=1,max=12,dive,required"`
}

type showingReq struct {
	ShowDate string `json:"show_date" validate:"required"`
	ShowTime string `json:"show_time" validate:"required"`
}

func (h *AdminHandler) changed(ctx context.Context) {
	if h.OnCatalogChange != nil {
		h.OnCatalogChange(context.WithoutCancel(ctx))
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateScreen POST /v1/admin/screens
func (h *AdminHandler) CreateScreen(c echo.Context) error {
	var req createScreenReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	s := &model.Screen{Name: strings.TrimSpace(req.Name), ScreenNumber: req.ScreenNumber, NumberOfSeats: req.NumberOfSeats}
	if err := h.Screens.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrScreenNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "screen number already exists"})
		}
		h.Log.WithError(err).Error("create screen failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create screen failed"})
	}
	return c.JSON(http.StatusCreated, toScreenView(*s))
}

// ListScreens GET /v1/admin/screens
func (h *AdminHandler) ListScreens(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()
	screens, err := h.Screens.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list screens failed"})
	}
	views := make([]screenView, len(screens))
	for i, s := range screens {
		views[i] = toScreenView(s)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// CreateMovie POST /v1/admin/movies
// Adds the movie and one showing per show time on each of Days consecutive
// days from the release date, all in one transaction.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createMovieReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	release, err := model.ParseShowDate(req.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	times := make([]string, 0, len(req.ShowTimes))
	for _, raw := range req.ShowTimes {
		t, err := model.ParseShowTime(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if !slices.Contains(times, t) {
			times = append(times, t)
		}
	}
	days := max(req.Days, 1)
	if days > maxRunDays {
		days = maxRunDays
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if _, err := h.Screens.GetByID(ctx, req.ScreenID); err != nil {
		if errors.Is(err, repository.ErrScreenNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "screen not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load screen failed"})
	}

	m := &model.Movie{
		Title:       strings.TrimSpace(req.Title),
		Description: optional(req.Description),
		PosterURL:   optional(req.PosterURL),
		ScreenID:    req.ScreenID,
		CreatedBy:   &uid,
	}
	showings, err := h.createMovieTx(ctx, m, release, days, times)
	if err != nil {
		if errors.Is(err, repository.ErrShowingExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showing already exists"})
		}
		h.Log.WithError(err).Error("create movie failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	h.changed(ctx)

	views := make([]showingView, len(showings))
	for i, s := range showings {
		views[i] = toShowingView(s)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie": toAdminMovieView(*m), "showings": views})
}

func (h *AdminHandler) createMovieTx(ctx context.Context, m *model.Movie, release string, days int, times []string) ([]model.Showing, error) {
	tx, err := h.Movies.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Movies.CreateTx(ctx, tx, m); err != nil {
		return nil, err
	}
	start, _ := time.Parse(model.DateLayout, release)
	var out []model.Showing
	for d := range days {
		date := start.AddDate(0, 0, d).Format(model.DateLayout)
		for _, t := range times {
			s := model.Showing{MovieID: m.ID, ScreenID: m.ScreenID, ShowDate: date, ShowTime: t}
			if err := h.Schedules.CreateTx(ctx, tx, &s); err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return out, nil
}

// DeleteMovie DELETE /v1/admin/movies/:id
// Movies with sold tickets cannot be removed.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	switch err := h.Movies.Delete(ctx, id); {
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie has sold tickets"})
	case err != nil:
		h.Log.WithError(err).Error("delete movie failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movie failed"})
	}
	h.changed(ctx)
	return c.NoContent(http.StatusNoContent)
}

// AddShowing POST /v1/admin/movies/:id/showings
func (h *AdminHandler) AddShowing(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	date, clock, err := parseShowingReq(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load movie failed"})
	}
	s := &model.Showing{MovieID: m.ID, ScreenID: m.ScreenID, ShowDate: date, ShowTime: clock}
	if err := h.Schedules.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrShowingExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showing already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showing failed"})
	}
	h.changed(ctx)
	return c.JSON(http.StatusCreated, toShowingView(*s))
}

// ListShowings GET /v1/admin/movies/:id/showings, past ones included.
func (h *AdminHandler) ListShowings(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if _, err := h.Movies.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load movie failed"})
	}
	showings, err := h.Schedules.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list showings failed"})
	}
	views := make([]showingView, len(showings))
	for i, s := range showings {
		views[i] = toShowingView(s)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// AllShowings GET /v1/admin/showings?from=YYYY-MM-DD lists showings of
// every movie, optionally from a date on.
func (h *AdminHandler) AllShowings(c echo.Context) error {
	from := ""
	if raw := c.QueryParam("from"); raw != "" {
		d, err := model.ParseShowDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		from = d
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	showings, err := h.Schedules.ListAll(ctx, from)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list showings failed"})
	}
	views := make([]showingView, len(showings))
	for i, s := range showings {
		views[i] = toShowingView(s)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// UpdateShowing PUT /v1/admin/showings/:id moves a showing to a new date
// and time. Showings with sold tickets stay put.
func (h *AdminHandler) UpdateShowing(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	date, clock, err := parseShowingReq(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	s, err := h.Schedules.Reschedule(ctx, id, date, clock)
	switch {
	case errors.Is(err, repository.ErrShowingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
	case errors.Is(err, repository.ErrNoChange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showing already at that date and time"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showing has sold tickets"})
	case errors.Is(err, repository.ErrShowingExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showing already exists"})
	case err != nil:
		h.Log.WithError(err).Error("reschedule failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update showing failed"})
	}
	h.changed(ctx)
	return c.JSON(http.StatusOK, toShowingView(*s))
}

// ShowingTickets GET /v1/admin/showings/:id/tickets
func (h *AdminHandler) ShowingTickets(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if _, err := h.Schedules.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load showing failed"})
	}
	ts, err := h.Tickets.ListByShowing(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toTicketViews(ts)})
}

// parseShowingReq binds a showingReq and normalises its date and time.
func parseShowingReq(c echo.Context) (date, clock string, err error) {
	var req showingReq
	if err := bindValid(c, &req); err != nil {
		return "", "", err
	}
	if date, err = model.ParseShowDate(req.ShowDate); err != nil {
		return "", "", badRequest(err.Error())
	}
	if clock, err = model.ParseShowTime(req.ShowTime); err != nil {
		return "", "", badRequest(err.Error())
	}
	return date, clock, nil
}

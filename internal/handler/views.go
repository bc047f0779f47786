package handler

import (
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// JSON shapes shared by the catalog, selection and ticket endpoints.

type screenView struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	ScreenNumber  int       `json:"screen_number"`
	NumberOfSeats int       `json:"number_of_seats"`
	CreatedAt     time.Time `json:"created_at"`
}

func toScreenView(s model.Screen) screenView {
	return screenView{ID: s.ID, Name: s.Name, ScreenNumber: s.ScreenNumber, NumberOfSeats: s.NumberOfSeats, CreatedAt: s.CreatedAt}
}

// adminMovieView is a movie as stored, without the derived catalog fields.
type adminMovieView struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	PosterURL   *string   `json:"poster_url,omitempty"`
	ScreenID    uint64    `json:"screen_id"`
	CreatedBy   *uint64   `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAdminMovieView(m model.Movie) adminMovieView {
	return adminMovieView{
		ID: m.ID, Title: m.Title, Description: m.Description, PosterURL: m.PosterURL,
		ScreenID: m.ScreenID, CreatedBy: m.CreatedBy, CreatedAt: m.CreatedAt,
	}
}

type movieView struct {
	ID           uint64   `json:"id"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	PosterURL    *string  `json:"poster_url,omitempty"`
	ScreenID     uint64   `json:"screen_id"`
	ScreenName   string   `json:"screen_name"`
	ScreenNumber int      `json:"screen_number"`
	StartDate    string   `json:"start_date"`
	StopDate     string   `json:"stop_date"`
	ShowTimes    []string `json:"show_times"`
}

func toMovieView(m model.MovieSummary) movieView {
	times := make([]string, len(m.ShowTimes))
	for i, t := range m.ShowTimes {
		times[i] = model.DisplayClock(t)
	}
	return movieView{
		ID: m.ID, Title: m.Title, Description: m.Description, PosterURL: m.PosterURL,
		ScreenID: m.ScreenID, ScreenName: m.ScreenName, ScreenNumber: m.ScreenNumber,
		StartDate: m.StartDate, StopDate: m.StopDate, ShowTimes: times,
	}
}

type showingView struct {
	ID          uint64 `json:"id"`
	MovieID     uint64 `json:"movie_id"`
	ScreenID    uint64 `json:"screen_id"`
	ShowDate    string `json:"show_date"`
	ShowTime    string `json:"show_time"`
	DisplayTime string `json:"display_time"`
}

func toShowingView(s model.Showing) showingView {
	return showingView{
		ID: s.ID, MovieID: s.MovieID, ScreenID: s.ScreenID,
		ShowDate: s.ShowDate, ShowTime: s.ShowTime, DisplayTime: s.DisplayTime(),
	}
}

type priceView struct {
	GoldSeats      int    `json:"gold_seats"`
	StandardSeats  int    `json:"standard_seats"`
	Base           string `json:"base"`
	GST            string `json:"gst"`
	ConvenienceFee string `json:"convenience_fee"`
	Total          string `json:"total"`
	TotalPaise     int64  `json:"total_paise"`
}

func toPriceView(p booking.Price) priceView {
	return priceView{
		GoldSeats: p.GoldSeats, StandardSeats: p.StandardSeats,
		Base: p.Base.String(), GST: p.GST.String(), ConvenienceFee: p.ConvenienceFee.String(),
		Total: p.Total.String(), TotalPaise: int64(p.Total),
	}
}

type selectionView struct {
	ShowingID uint64          `json:"showing_id"`
	Layout    booking.Layout  `json:"layout"`
	Desired   int             `json:"desired"`
	State     booking.State   `json:"state"`
	Picks     booking.SeatSet `json:"picks"`
	Booked    booking.SeatSet `json:"booked"`
	Price     priceView       `json:"price"`
}

func toSelectionView(s *booking.Selection) selectionView {
	return selectionView{
		ShowingID: s.ShowingID, Layout: s.Layout, Desired: s.Desired, State: s.State(),
		Picks: s.Picks, Booked: s.Booked, Price: toPriceView(s.Quote()),
	}
}

type ticketView struct {
	ID             string    `json:"ticket_id"`
	ShowingID      uint64    `json:"showing_id"`
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	ScreenID       uint64    `json:"screen_id"`
	ShowDate       string    `json:"show_date"`
	ShowTime       string    `json:"show_time"`
	DisplayTime    string    `json:"display_time"`
	GoldSeats      []int     `json:"gold_seats"`
	StandardSeats  []int     `json:"standard_seats"`
	Base           string    `json:"base"`
	GST            string    `json:"gst"`
	ConvenienceFee string    `json:"convenience_fee"`
	Total          string    `json:"total"`
	TotalPaise     int64     `json:"total_paise"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentRef     *string   `json:"payment_ref,omitempty"`
	CustomerID     uint64    `json:"customer_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func toTicketView(t model.Ticket) ticketView {
	nonNil := func(s []int) []int {
		if s == nil {
			return []int{}
		}
		return s
	}
	return ticketView{
		ID: t.ID, ShowingID: t.ShowingID, MovieID: t.MovieID, MovieTitle: t.MovieTitle, ScreenID: t.ScreenID,
		ShowDate: t.ShowDate, ShowTime: t.ShowTime, DisplayTime: model.DisplayClock(t.ShowTime),
		GoldSeats: nonNil(t.GoldSeats), StandardSeats: nonNil(t.StandardSeats),
		Base:           booking.Money(t.BasePaise).String(),
		GST:            booking.Money(t.GSTPaise).String(),
		ConvenienceFee: booking.Money(t.ConvenienceFeePaise).String(),
		Total:          booking.Money(t.TotalPaise).String(),
		TotalPaise:     t.TotalPaise,
		PaymentMethod:  t.PaymentMethod, PaymentRef: t.PaymentRef,
		CustomerID: t.CustomerID, CreatedAt: t.CreatedAt,
	}
}

func toTicketViews(ts []model.Ticket) []ticketView {
	out := make([]ticketView, len(ts))
	for i, t := range ts {
		out[i] = toTicketView(t)
	}
	return out
}

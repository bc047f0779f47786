package model

import "time"

// Ticket is a confirmed booking. It is written once at checkout and never
// updated. Seat lists are stored comma-joined in the tickets row and one
// ticket_seats row per seat guards against double booking.
//
// Fields:
//  ID                  – ticket identifier, TKT-<movie>-<NNNNNN>.
//  ShowingID           – schedule the ticket is for.
//  MovieID             – movie id, part of the performance key.
//  MovieTitle          – title at the time of booking.
//  ScreenID            – screen of the showing.
//  ShowDate / ShowTime – performance date and time.
//  GoldSeats           – booked gold seat numbers, ascending.
//  StandardSeats       – booked standard seat numbers, ascending.
//  BasePaise           – seat fares.
//  GSTPaise            – tax on the seat fares.
//  ConvenienceFeePaise – per ticket booking fee.
//  TotalPaise          – amount charged.
//  PaymentMethod       – Credit Card, Debit Card or UPI.
//  PaymentRef          – reference returned by the payment gateway.
//  CustomerID          – user who booked.
//  CreatedAt           – creation timestamp.
type Ticket struct {
	ID                  string    // tickets.ticket_id
	ShowingID           uint64    // tickets.schedule_id
	MovieID             uint64    // tickets.movie_id
	MovieTitle          string    // tickets.movie_title
	ScreenID            uint64    // tickets.screen_id
	ShowDate            string    // tickets.show_date
	ShowTime            string    // tickets.show_time
	GoldSeats           []int     // tickets.gold_seats (nullable)
	StandardSeats       []int     // tickets.standard_seats (nullable)
	BasePaise           int64     // tickets.base_cost_paise
	GSTPaise            int64     // tickets.gst_paise
	ConvenienceFeePaise int64     // tickets.convenience_fee_paise
	TotalPaise          int64     // tickets.total_paise
	PaymentMethod       string    // tickets.payment_method
	PaymentRef          *string   // tickets.payment_ref (nullable)
	CustomerID          uint64    // tickets.customer_id
	CreatedAt           time.Time // tickets.created_at
}

// Key returns the performance the ticket belongs to.
func (t Ticket) Key() ShowingKey {
	return ShowingKey{MovieID: t.MovieID, ShowDate: t.ShowDate, ShowTime: t.ShowTime}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var (
	// ErrTicketNotFound indicates that no ticket matched the id (and owner).
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrTicketIDTaken is returned when the generated ticket id collides
	// with an existing one. Callers retry with a fresh id.
	ErrTicketIDTaken = errors.New("ticket id already used")
	// ErrSeatTaken is returned when inserting a seat violates the
	// per-showing seat uniqueness.
	ErrSeatTaken = errors.New("seat already booked")
)

// TicketRepo manages tickets and their per-seat rows.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying sql.DB so the booking service can run the
// availability check and the insert in one transaction.
func (r *TicketRepo) DB() *sql.DB {
	return r.db
}

// BookedSeats returns every seat sold for the performance. A performance
// without tickets yields an empty set.
func (r *TicketRepo) BookedSeats(ctx context.Context, key model.ShowingKey) (booking.SeatSet, error) {
	return bookedSeats(ctx, r.db, key)
}

// BookedSeatsTx is BookedSeats inside the caller's transaction.
func (r *TicketRepo) BookedSeatsTx(ctx context.Context, tx *sql.Tx, key model.ShowingKey) (booking.SeatSet, error) {
	return bookedSeats(ctx, tx, key)
}

func bookedSeats(ctx context.Context, q queryer, key model.ShowingKey) (booking.SeatSet, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT gold_seats, standard_seats FROM tickets WHERE movie_id = ? AND show_date = ? AND show_time = ?`,
		key.MovieID, key.ShowDate, key.ShowTime)
	if err != nil {
		return booking.SeatSet{}, err
	}
	defer rows.Close()

	var booked booking.SeatSet
	for rows.Next() {
		var gold, standard sql.NullString
		if err := rows.Scan(&gold, &standard); err != nil {
			return booking.SeatSet{}, err
		}
		g, err := booking.SplitSeats(gold.String)
		if err != nil {
			return booking.SeatSet{}, err
		}
		s, err := booking.SplitSeats(standard.String)
		if err != nil {
			return booking.SeatSet{}, err
		}
		booked = booked.Union(booking.NewSeatSet(g, s))
	}
	return booked, rows.Err()
}

// CreateTx inserts the ticket row and one ticket_seats row per seat using
// the provided transaction. It returns ErrTicketIDTaken when t.ID is in
// use and ErrSeatTaken when any seat is already sold. The caller must
// commit or roll back.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (
			ticket_id, schedule_id, movie_id, movie_title, screen_id, show_date, show_time,
			gold_seats, standard_seats, base_cost_paise, gst_paise, convenience_fee_paise, total_paise,
			payment_method, payment_ref, customer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		t.ID, t.ShowingID, t.MovieID, t.MovieTitle, t.ScreenID, t.ShowDate, t.ShowTime,
		seatColumn(t.GoldSeats), seatColumn(t.StandardSeats),
		t.BasePaise, t.GSTPaise, t.ConvenienceFeePaise, t.TotalPaise,
		t.PaymentMethod, stringArg(t.PaymentRef), t.CustomerID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTicketIDTaken
		}
		return err
	}
	if err := r.createSeatsTx(ctx, tx, t); err != nil {
		return err
	}

	created, err := getTicket(ctx, tx, `WHERE t.ticket_id = ?`, t.ID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// createSeatsTx bulk-inserts the seat guard rows for t.
func (r *TicketRepo) createSeatsTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	n := len(t.GoldSeats) + len(t.StandardSeats)
	if n == 0 {
		return fmt.Errorf("ticket %s has no seats", t.ID)
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO ticket_seats (ticket_id, movie_id, show_date, show_time, seat_class, seat_number) VALUES `)
	args := make([]any, 0, n*6)
	add := func(class booking.SeatClass, seats []int) {
		for _, seat := range seats {
			if len(args) > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?,?,?,?,?,?)")
			args = append(args, t.ID, t.MovieID, t.ShowDate, t.ShowTime, string(class), seat)
		}
	}
	add(booking.Gold, t.GoldSeats)
	add(booking.Standard, t.StandardSeats)

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// ListByCustomer returns a customer's tickets, latest performance first.
func (r *TicketRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Ticket, error) {
	return listTickets(ctx, r.db,
		`WHERE t.customer_id = ? ORDER BY t.show_date DESC, t.show_time DESC, t.created_at DESC`, customerID)
}

// ListByShowing returns the tickets sold for a schedule, oldest first.
func (r *TicketRepo) ListByShowing(ctx context.Context, scheduleID uint64) ([]model.Ticket, error) {
	return listTickets(ctx, r.db, `WHERE t.schedule_id = ? ORDER BY t.created_at ASC, t.ticket_id ASC`, scheduleID)
}

// GetByIDForCustomer returns a ticket only if it belongs to customerID.
func (r *TicketRepo) GetByIDForCustomer(ctx context.Context, ticketID string, customerID uint64) (*model.Ticket, error) {
	return getTicket(ctx, r.db, `WHERE t.ticket_id = ? AND t.customer_id = ?`, ticketID, customerID)
}

const ticketSelect = `SELECT
		t.ticket_id, t.schedule_id, t.movie_id, t.movie_title, t.screen_id, t.show_date, t.show_time,
		t.gold_seats, t.standard_seats, t.base_cost_paise, t.gst_paise, t.convenience_fee_paise, t.total_paise,
		t.payment_method, t.payment_ref, t.customer_id, t.created_at
	FROM tickets t `

func getTicket(ctx context.Context, q queryer, where string, args ...any) (*model.Ticket, error) {
	t, err := scanTicket(q.QueryRowContext(ctx, ticketSelect+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

func listTickets(ctx context.Context, q queryer, where string, args ...any) ([]model.Ticket, error) {
	rows, err := q.QueryContext(ctx, ticketSelect+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var (
		t              model.Ticket
		date           dbDate
		clock          dbClock
		gold, standard sql.NullString
		paymentRef     sql.NullString
		created        dbTime
	)
	if err := row.Scan(
		&t.ID, &t.ShowingID, &t.MovieID, &t.MovieTitle, &t.ScreenID, &date, &clock,
		&gold, &standard, &t.BasePaise, &t.GSTPaise, &t.ConvenienceFeePaise, &t.TotalPaise,
		&t.PaymentMethod, &paymentRef, &t.CustomerID, &created,
	); err != nil {
		return nil, err
	}
	var err error
	if t.GoldSeats, err = booking.SplitSeats(gold.String); err != nil {
		return nil, err
	}
	if t.StandardSeats, err = booking.SplitSeats(standard.String); err != nil {
		return nil, err
	}
	t.ShowDate, t.ShowTime = string(date), string(clock)
	t.PaymentRef, t.CreatedAt = nullString(paymentRef), created.Time
	return &t, nil
}

// seatColumn stores an empty seat list as NULL.
func seatColumn(seats []int) any {
	if len(seats) == 0 {
		return nil
	}
	return booking.JoinSeats(seats)
}

// Package service holds the booking workflow: availability, per-user seat
// selections, simulated payment and the checkout transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// maxTicketIDAttempts bounds retries when a generated ticket id collides.
const maxTicketIDAttempts = 5

// EventPublisher announces confirmed tickets. *queue.Publisher satisfies it.
type EventPublisher interface {
	PublishTicketBooked(ctx context.Context, ev queue.TicketBookedEvent) error
}

// BookingRequest is a checkout of a complete selection.
type BookingRequest struct {
	CustomerID uint64
	Selection  *booking.Selection
	Payment    PaymentDetails
}

// BookingService resolves availability and turns complete selections into
// tickets.
type BookingService struct {
	schedules *repository.ScheduleRepo
	screens   *repository.ScreenRepo
	movies    *repository.MovieRepo
	tickets   *repository.TicketRepo
	payments  PaymentGateway
	events    EventPublisher
	log       *logrus.Logger

	loc         *time.Location // show dates and times are wall clock in loc
	newTicketID booking.TicketIDFunc
	now         func() time.Time
}

// NewBookingService wires the service. events may be nil, in which case no
// booking events are published. loc is the zone show times are given in;
// nil means UTC.
func NewBookingService(
	schedules *repository.ScheduleRepo,
	screens *repository.ScreenRepo,
	movies *repository.MovieRepo,
	tickets *repository.TicketRepo,
	payments PaymentGateway,
	events EventPublisher,
	log *logrus.Logger,
	loc *time.Location,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		schedules:   schedules,
		screens:     screens,
		movies:      movies,
		tickets:     tickets,
		payments:    payments,
		events:      events,
		log:         log,
		loc:         loc,
		newTicketID: booking.NewTicketID,
		now:         time.Now,
	}
}

// LoadShowing returns a showing and the seat layout of its screen.
func (s *BookingService) LoadShowing(ctx context.Context, showingID uint64) (*model.Showing, booking.Layout, error) {
	showing, err := s.schedules.GetByID(ctx, showingID)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return nil, booking.Layout{}, booking.ErrNotFound
	}
	if err != nil {
		return nil, booking.Layout{}, err
	}
	screen, err := s.screens.GetByShowing(ctx, showingID)
	if errors.Is(err, repository.ErrScreenNotFound) {
		return nil, booking.Layout{}, booking.ErrNotFound
	}
	if err != nil {
		return nil, booking.Layout{}, err
	}
	layout, err := booking.NewLayout(screen.NumberOfSeats)
	if err != nil {
		return nil, booking.Layout{}, err
	}
	return showing, layout, nil
}

// checkUpcoming rejects showings that have started.
func (s *BookingService) checkUpcoming(showing *model.Showing) error {
	starts, err := showing.StartsAt(s.loc)
	if err != nil {
		return fmt.Errorf("showing %d: %w", showing.ID, err)
	}
	if !starts.After(s.now()) {
		return booking.ErrShowingStarted
	}
	return nil
}

// BookedSeats returns the seats already sold for the showing's
// performance. No tickets yields an empty set.
func (s *BookingService) BookedSeats(ctx context.Context, showing *model.Showing) (booking.SeatSet, error) {
	return s.tickets.BookedSeats(ctx, showing.Key())
}

// OpenSelection starts an empty selection of desired seats for a showing
// that has not started yet.
func (s *BookingService) OpenSelection(ctx context.Context, showingID uint64, desired int) (*booking.Selection, error) {
	showing, layout, err := s.LoadShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUpcoming(showing); err != nil {
		return nil, err
	}
	booked, err := s.BookedSeats(ctx, showing)
	if err != nil {
		return nil, err
	}
	return booking.NewSelection(showing.ID, layout, booked, desired)
}

// RefreshSelection reloads the booked snapshot of sel and drops picks that
// were sold in the meantime. It returns the dropped seats.
func (s *BookingService) RefreshSelection(ctx context.Context, sel *booking.Selection) (booking.SeatSet, error) {
	showing, _, err := s.LoadShowing(ctx, sel.ShowingID)
	if err != nil {
		return booking.SeatSet{}, err
	}
	booked, err := s.BookedSeats(ctx, showing)
	if err != nil {
		return booking.SeatSet{}, err
	}
	return sel.RefreshBooked(booked), nil
}

// Book charges the customer and persists a ticket for a complete
// selection. Showings that have started are refused with
// booking.ErrShowingStarted.
//
// Availability is checked again inside the insert transaction and the
// ticket_seats unique index rejects concurrent writers, so a seat is sold
// at most once. A lost race returns a *booking.ConflictError and the charge
// is refunded. Storage failures wrap booking.ErrBookingFailed.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*model.Ticket, error) {
	sel := req.Selection
	if sel == nil || !sel.Complete() {
		return nil, booking.ErrIncompleteSelection
	}
	if err := req.Payment.Validate(s.now()); err != nil {
		return nil, err
	}
	showing, _, err := s.LoadShowing(ctx, sel.ShowingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUpcoming(showing); err != nil {
		return nil, err
	}
	movie, err := s.movies.GetByID(ctx, showing.MovieID)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", booking.ErrBookingFailed, err)
	}

	// Fail fast before charging. The transaction below re-checks.
	booked, err := s.BookedSeats(ctx, showing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", booking.ErrBookingFailed, err)
	}
	if taken := sel.Picks.Intersect(booked); taken.Len() > 0 {
		return nil, &booking.ConflictError{Seats: taken}
	}

	price := sel.Quote()
	receipt, err := s.payments.Charge(ctx, req.Payment, price.Total)
	if err != nil {
		if errors.Is(err, ErrInvalidPayment) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: payment: %w", booking.ErrBookingFailed, err)
	}

	fields := logrus.Fields{"showing_id": showing.ID, "customer_id": req.CustomerID, "payment_ref": receipt.Reference}
	ticket, err := s.persist(ctx, showing, movie.Title, sel, price, receipt, req.CustomerID)
	if err != nil {
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) && conflict.Seats.Len() == 0 {
			if now, lookupErr := s.BookedSeats(ctx, showing); lookupErr == nil {
				conflict.Seats = sel.Picks.Intersect(now)
			}
		}
		if refundErr := s.payments.Refund(context.WithoutCancel(ctx), receipt); refundErr != nil {
			s.log.WithFields(fields).WithError(refundErr).Error("refund after failed booking")
		}
		s.log.WithFields(fields).WithError(err).Warn("booking not completed")
		return nil, err
	}

	s.log.WithFields(fields).WithField("ticket_id", ticket.ID).Info("ticket booked")
	s.publish(ctx, ticket)
	return ticket, nil
}

func (s *BookingService) persist(
	ctx context.Context,
	showing *model.Showing,
	title string,
	sel *booking.Selection,
	price booking.Price,
	receipt PaymentReceipt,
	customerID uint64,
) (*model.Ticket, error) {
	ref := receipt.Reference
	for range maxTicketIDAttempts {
		t := &model.Ticket{
			ID:                  s.newTicketID(showing.MovieID),
			ShowingID:           showing.ID,
			MovieID:             showing.MovieID,
			MovieTitle:          title,
			ScreenID:            showing.ScreenID,
			ShowDate:            showing.ShowDate,
			ShowTime:            showing.ShowTime,
			GoldSeats:           sel.Picks.Class(booking.Gold),
			StandardSeats:       sel.Picks.Class(booking.Standard),
			BasePaise:           int64(price.Base),
			GSTPaise:            int64(price.GST),
			ConvenienceFeePaise: int64(price.ConvenienceFee),
			TotalPaise:          int64(price.Total),
			PaymentMethod:       string(receipt.Method),
			PaymentRef:          &ref,
			CustomerID:          customerID,
		}
		err := s.insert(ctx, showing, sel, t)
		if errors.Is(err, repository.ErrTicketIDTaken) {
			s.log.WithField("ticket_id", t.ID).Debug("ticket id collision, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: no free ticket id after %d attempts", booking.ErrBookingFailed, maxTicketIDAttempts)
}

// insert re-checks availability and writes t in one transaction.
func (s *BookingService) insert(ctx context.Context, showing *model.Showing, sel *booking.Selection, t *model.Ticket) error {
	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", booking.ErrBookingFailed, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booked, err := s.tickets.BookedSeatsTx(ctx, tx, showing.Key())
	if err != nil {
		return fmt.Errorf("%w: %w", booking.ErrBookingFailed, err)
	}
	if taken := sel.Picks.Intersect(booked); taken.Len() > 0 {
		return &booking.ConflictError{Seats: taken}
	}

	switch err := s.tickets.CreateTx(ctx, tx, t); {
	case errors.Is(err, repository.ErrTicketIDTaken):
		return err
	case errors.Is(err, repository.ErrSeatTaken):
		// Seats are filled in by Book once the transaction is gone.
		return &booking.ConflictError{}
	case err != nil:
		return fmt.Errorf("%w: %w", booking.ErrBookingFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", booking.ErrBookingFailed, err)
	}
	committed = true
	return nil
}

// publish announces t. Failures are logged; the booking already stands.
func (s *BookingService) publish(ctx context.Context, t *model.Ticket) {
	if s.events == nil {
		return
	}
	ev := queue.TicketBookedEvent{
		TicketID:      t.ID,
		CustomerID:    t.CustomerID,
		ShowingID:     t.ShowingID,
		MovieID:       t.MovieID,
		MovieTitle:    t.MovieTitle,
		ScreenID:      t.ScreenID,
		ShowDate:      t.ShowDate,
		ShowTime:      t.ShowTime,
		GoldSeats:     t.GoldSeats,
		StandardSeats: t.StandardSeats,
		TotalPaise:    t.TotalPaise,
		PaymentMethod: t.PaymentMethod,
		BookedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishTicketBooked(context.WithoutCancel(ctx), ev); err != nil {
		s.log.WithField("ticket_id", t.ID).WithError(err).Warn("ticket event not published")
	}
}

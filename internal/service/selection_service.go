package service

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// SelectionService drives one user's selection through open, toggle,
// count changes and checkout. Each user has at most one open selection;
// opening another showing replaces it.
type SelectionService struct {
	bookings *BookingService
	store    SelectionStore
}

// NewSelectionService returns a service persisting selections in store.
func NewSelectionService(bookings *BookingService, store SelectionStore) *SelectionService {
	return &SelectionService{bookings: bookings, store: store}
}

// Open starts a fresh selection for showingID.
func (s *SelectionService) Open(ctx context.Context, userID, showingID uint64, desired int) (*booking.Selection, error) {
	sel, err := s.bookings.OpenSelection(ctx, showingID, desired)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// Get returns the user's open selection.
func (s *SelectionService) Get(ctx context.Context, userID uint64) (*booking.Selection, error) {
	return s.store.Load(ctx, userID)
}

// SetCount changes the desired number of seats.
func (s *SelectionService) SetCount(ctx context.Context, userID uint64, n int) (*booking.Selection, error) {
	sel, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := sel.SetDesiredCount(n); err != nil {
		return sel, err
	}
	return sel, s.store.Save(ctx, userID, sel)
}

// Toggle flips one seat. On booking.ErrSelectionFull the unchanged
// selection is returned with the error.
func (s *SelectionService) Toggle(ctx context.Context, userID uint64, class booking.SeatClass, seat int) (booking.ToggleResult, *booking.Selection, error) {
	sel, err := s.store.Load(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	res, err := sel.Toggle(class, seat)
	if err != nil {
		return "", sel, err
	}
	if res == booking.ToggleBooked {
		return res, sel, nil
	}
	return res, sel, s.store.Save(ctx, userID, sel)
}

// Cancel discards the open selection. Cancelling nothing is not an error.
func (s *SelectionService) Cancel(ctx context.Context, userID uint64) error {
	return s.store.Delete(ctx, userID)
}

// Checkout books the open selection. The selection is removed on success.
// When seats were taken meanwhile, the stored selection is refreshed so the
// user can pick again, and the *booking.ConflictError is returned together
// with the refreshed selection.
func (s *SelectionService) Checkout(ctx context.Context, userID uint64, payment PaymentDetails) (*model.Ticket, *booking.Selection, error) {
	sel, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ticket, err := s.bookings.Book(ctx, BookingRequest{CustomerID: userID, Selection: sel, Payment: payment})
	if errors.Is(err, booking.ErrSeatConflict) {
		if _, refreshErr := s.bookings.RefreshSelection(ctx, sel); refreshErr == nil {
			_ = s.store.Save(ctx, userID, sel)
		}
		return nil, sel, err
	}
	if err != nil {
		return nil, sel, err
	}
	_ = s.store.Delete(ctx, userID)
	return ticket, nil, nil
}

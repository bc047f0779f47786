package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when a seat number is outside 1..classCount.
	ErrOutOfRange = errors.New("seat number out of range")
	// ErrSelectionFull signals a toggle that would exceed the desired seat
	// count. The selection is left unchanged.
	ErrSelectionFull = errors.New("selection already holds the requested number of seats")
	// ErrInvalidSeatCount is returned for a desired count outside 1..MaxSeatsPerBooking.
	ErrInvalidSeatCount = errors.New("seat count must be between 1 and 10")
	// ErrInvalidCapacity is returned for a screen with no seats.
	ErrInvalidCapacity = errors.New("screen capacity must be at least 1")
	// ErrInvalidSeatClass is returned for an unknown seat class name.
	ErrInvalidSeatClass = errors.New("seat class must be GOLD or STANDARD")
	// ErrIncompleteSelection is returned when checkout is attempted before the
	// number of picked seats matches the desired count.
	ErrIncompleteSelection = errors.New("selected seats do not match the requested count")
	// ErrSeatConflict is returned when a picked seat was booked by someone else.
	ErrSeatConflict = errors.New("one or more seats are already booked")
	// ErrBookingFailed wraps storage failures during checkout. Retryable.
	ErrBookingFailed = errors.New("booking failed")
	// ErrShowingStarted is returned when seats are requested for a showing
	// whose start time has passed.
	ErrShowingStarted = errors.New("showing has already started")
	// ErrNotFound is returned when the showing or its screen does not exist.
	ErrNotFound = errors.New("showing not found")
)

// ConflictError carries the seats that turned out to be taken. It matches
// ErrSeatConflict with errors.Is.
type ConflictError struct {
	Seats SeatSet
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: gold %v, standard %v", ErrSeatConflict, e.Seats.Gold, e.Seats.Standard)
}

func (e *ConflictError) Unwrap() error { return ErrSeatConflict }

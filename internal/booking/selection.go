package booking

// MaxSeatsPerBooking caps the desired seat count of a selection.
const MaxSeatsPerBooking = 10

// State of a Selection relative to its desired count.
type State string

const (
	StateEmpty    State = "EMPTY"
	StatePartial  State = "PARTIAL"
	StateComplete State = "COMPLETE"
)

// ToggleResult describes what a successful Toggle did.
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "ADDED"
	ToggleRemoved ToggleResult = "REMOVED"
	// ToggleBooked means the seat is taken and the selection did not change.
	ToggleBooked ToggleResult = "BOOKED"
)

// Selection is one user's in-progress seat choice for a showing.
//
// Picks never exceed Desired through Toggle, and a seat is never both
// picked and booked. Desired may be lowered below the number of picks;
// such a selection is not Complete until picks are removed.
type Selection struct {
	ShowingID uint64  `json:"showing_id"`
	Layout    Layout  `json:"layout"`
	Desired   int     `json:"desired"`
	Picks     SeatSet `json:"picks"`
	Booked    SeatSet `json:"booked"`
}

// NewSelection opens an empty selection. Booked seats are the snapshot
// returned by the availability lookup.
func NewSelection(showingID uint64, layout Layout, booked SeatSet, desired int) (*Selection, error) {
	if layout.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if desired < 1 || desired > MaxSeatsPerBooking {
		return nil, ErrInvalidSeatCount
	}
	return &Selection{
		ShowingID: showingID,
		Layout:    layout,
		Desired:   desired,
		Booked:    booked.Clone(),
	}, nil
}

// Total is the number of picked seats.
func (s *Selection) Total() int { return s.Picks.Len() }

// State reports Empty, Partial or Complete.
func (s *Selection) State() State {
	switch n := s.Total(); {
	case n == 0:
		return StateEmpty
	case n == s.Desired:
		return StateComplete
	default:
		return StatePartial
	}
}

// Complete reports whether the selection can be checked out.
func (s *Selection) Complete() bool { return s.State() == StateComplete }

// Toggle flips seat of class c.
//
// A picked seat is removed. A booked seat is left alone and ToggleBooked is
// returned. Otherwise the seat is added unless the selection already holds
// Desired seats, in which case ErrSelectionFull is returned.
func (s *Selection) Toggle(c SeatClass, seat int) (ToggleResult, error) {
	if c != Gold && c != Standard {
		return "", ErrInvalidSeatClass
	}
	if !s.Layout.Contains(c, seat) {
		return "", ErrOutOfRange
	}
	if s.Picks.Remove(c, seat) {
		return ToggleRemoved, nil
	}
	if s.Booked.Has(c, seat) {
		return ToggleBooked, nil
	}
	if s.Total() >= s.Desired {
		return "", ErrSelectionFull
	}
	s.Picks.Add(c, seat)
	return ToggleAdded, nil
}

// SetDesiredCount changes the target count. Existing picks are kept.
func (s *Selection) SetDesiredCount(n int) error {
	if n < 1 || n > MaxSeatsPerBooking {
		return ErrInvalidSeatCount
	}
	s.Desired = n
	return nil
}

// RefreshBooked replaces the booked snapshot and drops picks that are now
// taken. It returns the dropped seats.
func (s *Selection) RefreshBooked(booked SeatSet) SeatSet {
	s.Booked = booked.Clone()
	lost := s.Picks.Intersect(booked)
	for _, c := range []SeatClass{Gold, Standard} {
		for _, n := range lost.Class(c) {
			s.Picks.Remove(c, n)
		}
	}
	return lost
}

// Quote prices the current picks.
func (s *Selection) Quote() Price {
	return Quote(len(s.Picks.Gold), len(s.Picks.Standard))
}

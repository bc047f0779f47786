// Package booking holds the seat inventory, selection and pricing rules for a
// single showing. It has no storage or transport dependencies.
package booking

import (
	"strings"
)

// SeatClass is a fare class. Seats are numbered 1..n separately in each class.
type SeatClass string

const (
	Gold     SeatClass = "GOLD"
	Standard SeatClass = "STANDARD"
)

// goldSharePercent of a screen's capacity is sold as Gold, rounded down.
const goldSharePercent = 30

// ParseSeatClass accepts "gold" / "standard" in any case.
func ParseSeatClass(s string) (SeatClass, error) {
	switch SeatClass(strings.ToUpper(strings.TrimSpace(s))) {
	case Gold:
		return Gold, nil
	case Standard:
		return Standard, nil
	}
	return "", ErrInvalidSeatClass
}

// Layout is the seat inventory of one screen.
type Layout struct {
	Capacity int `json:"capacity"`
	Gold     int `json:"gold"`
	Standard int `json:"standard"`
}

// NewLayout splits capacity into Gold = floor(30% of capacity) and
// Standard = the remainder.
func NewLayout(capacity int) (Layout, error) {
	if capacity < 1 {
		return Layout{}, ErrInvalidCapacity
	}
	gold := capacity * goldSharePercent / 100
	return Layout{Capacity: capacity, Gold: gold, Standard: capacity - gold}, nil
}

// ClassCount returns how many seats the class has. Unknown classes have none.
func (l Layout) ClassCount(c SeatClass) int {
	switch c {
	case Gold:
		return l.Gold
	case Standard:
		return l.Standard
	}
	return 0
}

// Contains reports whether seat is a valid number for class c.
func (l Layout) Contains(c SeatClass, seat int) bool {
	return seat >= 1 && seat <= l.ClassCount(c)
}

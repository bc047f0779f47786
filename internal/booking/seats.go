package booking

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SeatSet holds seat numbers per class, each list sorted and free of
// duplicates. The zero value is an empty set.
type SeatSet struct {
	Gold     []int `json:"gold"`
	Standard []int `json:"standard"`
}

// MarshalJSON renders empty classes as [] instead of null.
func (s SeatSet) MarshalJSON() ([]byte, error) {
	type plain SeatSet
	out := plain{Gold: s.Gold, Standard: s.Standard}
	if out.Gold == nil {
		out.Gold = []int{}
	}
	if out.Standard == nil {
		out.Standard = []int{}
	}
	return json.Marshal(out)
}

// NewSeatSet builds a set from unsorted, possibly repeated numbers.
func NewSeatSet(gold, standard []int) SeatSet {
	var s SeatSet
	for _, n := range gold {
		s.Add(Gold, n)
	}
	for _, n := range standard {
		s.Add(Standard, n)
	}
	return s
}

func (s *SeatSet) class(c SeatClass) *[]int {
	switch c {
	case Gold:
		return &s.Gold
	case Standard:
		return &s.Standard
	}
	return nil
}

// Class returns the seat numbers of class c.
func (s SeatSet) Class(c SeatClass) []int {
	if p := s.class(c); p != nil {
		return *p
	}
	return nil
}

// Has reports whether seat n of class c is in the set.
func (s SeatSet) Has(c SeatClass, n int) bool {
	_, found := slices.BinarySearch(s.Class(c), n)
	return found
}

// Add inserts seat n of class c. It reports false when already present.
func (s *SeatSet) Add(c SeatClass, n int) bool {
	p := s.class(c)
	if p == nil {
		return false
	}
	i, found := slices.BinarySearch(*p, n)
	if found {
		return false
	}
	*p = slices.Insert(*p, i, n)
	return true
}

// Remove deletes seat n of class c. It reports false when absent.
func (s *SeatSet) Remove(c SeatClass, n int) bool {
	p := s.class(c)
	if p == nil {
		return false
	}
	i, found := slices.BinarySearch(*p, n)
	if !found {
		return false
	}
	*p = slices.Delete(*p, i, i+1)
	return true
}

// Len is the number of seats across both classes.
func (s SeatSet) Len() int { return len(s.Gold) + len(s.Standard) }

// Intersect returns the seats present in both sets.
func (s SeatSet) Intersect(o SeatSet) SeatSet {
	var out SeatSet
	for _, c := range []SeatClass{Gold, Standard} {
		for _, n := range s.Class(c) {
			if o.Has(c, n) {
				out.Add(c, n)
			}
		}
	}
	return out
}

// Union merges o into a copy of s.
func (s SeatSet) Union(o SeatSet) SeatSet {
	out := s.Clone()
	for _, c := range []SeatClass{Gold, Standard} {
		for _, n := range o.Class(c) {
			out.Add(c, n)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s SeatSet) Clone() SeatSet {
	return SeatSet{Gold: slices.Clone(s.Gold), Standard: slices.Clone(s.Standard)}
}

// Equal reports whether both sets hold the same seats.
func (s SeatSet) Equal(o SeatSet) bool {
	return slices.Equal(s.Gold, o.Gold) && slices.Equal(s.Standard, o.Standard)
}

// JoinSeats renders seat numbers the way the tickets table stores them:
// comma-joined, "" for none.
func JoinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, n := range seats {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// SplitSeats parses a comma-joined seat list. Blank input yields no seats.
func SplitSeats(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid seat number %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

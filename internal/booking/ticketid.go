package booking

import (
	"fmt"
	"math/rand/v2"
)

// TicketIDFunc produces a candidate ticket id for a movie.
type TicketIDFunc func(movieID uint64) string

// ticketSuffixMin and ticketSuffixSpan give 900000 suffixes per movie.
const (
	ticketSuffixMin  = 100000
	ticketSuffixSpan = 900000
)

// NewTicketID returns "TKT-<movieID>-<NNNNNN>" with a random six digit
// suffix. Uniqueness is enforced by storage; callers retry on collision.
func NewTicketID(movieID uint64) string {
	return fmt.Sprintf("TKT-%d-%06d", movieID, ticketSuffixMin+rand.IntN(ticketSuffixSpan))
}

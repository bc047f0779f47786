// Package queue carries booking events over RabbitMQ: a publisher used at
// checkout and a background consumer that appends each event to the
// booking log.
package queue

// QueueName is the durable queue confirmed tickets are published to.
const QueueName = "booking.confirmed"

// TicketBookedEvent is published once per confirmed ticket. It carries
// enough for consumers to log or notify without reading the database.
type TicketBookedEvent struct {
	EventID       string `json:"event_id"`
	TicketID      string `json:"ticket_id"`
	CustomerID    uint64 `json:"customer_id"`
	ShowingID     uint64 `json:"showing_id"`
	MovieID       uint64 `json:"movie_id"`
	MovieTitle    string `json:"movie_title"`
	ScreenID      uint64 `json:"screen_id"`
	ShowDate      string `json:"show_date"`
	ShowTime      string `json:"show_time"`
	GoldSeats     []int  `json:"gold_seats"`
	StandardSeats []int  `json:"standard_seats"`
	TotalPaise    int64  `json:"total_paise"`
	PaymentMethod string `json:"payment_method"`
	BookedAt      string `json:"booked_at"`
}

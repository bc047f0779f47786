package model

import "time"

// Screen is an auditorium. Its capacity is split into gold and standard
// seats by the booking package; seats are not stored individually.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name (e.g. "Audi 1").
//  ScreenNumber  – number painted on the door.
//  NumberOfSeats – total capacity, at least 1.
//  CreatedAt     – creation timestamp.
type Screen struct {
	ID            uint64    // screens.id
	Name          string    // screens.name
	ScreenNumber  int       // screens.screen_number
	NumberOfSeats int       // screens.number_of_seats
	CreatedAt     time.Time // screens.created_at
}

package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is how show dates are stored and exchanged.
	DateLayout = "2006-01-02"
	// ClockLayout is how show times are stored.
	ClockLayout = "15:04:05"
	// DisplayClockLayout is how show times are presented to users.
	DisplayClockLayout = "03:04 PM"
)

// Showing is one row of the schedules table: a movie playing on a screen
// at a date and time. (MovieID, ShowDate, ShowTime) identifies the
// performance; ID is its surrogate key.
//
// Fields:
//  ID        – primary key identifier (schedule id).
//  MovieID   – movie being shown.
//  ScreenID  – screen it plays on.
//  ShowDate  – date in YYYY-MM-DD.
//  ShowTime  – start time in HH:MM:SS.
//  CreatedAt – creation timestamp.
type Showing struct {
	ID        uint64    // schedules.id
	MovieID   uint64    // schedules.movie_id
	ScreenID  uint64    // schedules.screen_id
	ShowDate  string    // schedules.show_date
	ShowTime  string    // schedules.show_time
	CreatedAt time.Time // schedules.created_at
}

// Key returns the performance identity used to match tickets.
func (s Showing) Key() ShowingKey {
	return ShowingKey{MovieID: s.MovieID, ShowDate: s.ShowDate, ShowTime: s.ShowTime}
}

// StartsAt combines date and time in loc.
func (s Showing) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, s.ShowDate+" "+s.ShowTime, loc)
}

// DisplayTime renders ShowTime as "07:30 PM". Unparseable values are
// returned unchanged.
func (s Showing) DisplayTime() string {
	return DisplayClock(s.ShowTime)
}

// ShowingKey identifies a performance the way tickets reference it.
type ShowingKey struct {
	MovieID  uint64
	ShowDate string
	ShowTime string
}

// ParseShowDate validates a YYYY-MM-DD date.
func ParseShowDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

var clockInputLayouts = []string{ClockLayout, "15:04", "03:04 PM", "3:04 PM", "03:04PM", "3:04PM"}

// ParseShowTime accepts "19:30", "19:30:00" or "07:30 PM" and returns the
// stored HH:MM:SS form.
func ParseShowTime(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("invalid show time %q, want HH:MM or HH:MM AM/PM", s)
}

// DisplayClock renders a stored HH:MM:SS time as "07:30 PM".
func DisplayClock(clock string) string {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format(DisplayClockLayout)
}

package model

import "time"

// Movie is a film in the catalog. A movie plays on one screen; its
// playing window is derived from its schedules.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title, copied onto tickets.
//  Description – synopsis (optional).
//  PosterURL   – poster image location (optional).
//  ScreenID    – screen the movie is assigned to.
//  CreatedBy   – admin user who added the movie.
//  CreatedAt   – creation timestamp.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description *string   // movies.description (nullable)
	PosterURL   *string   // movies.poster_url (nullable)
	ScreenID    uint64    // movies.screen_id
	CreatedBy   *uint64   // movies.created_by (nullable)
	CreatedAt   time.Time // movies.created_at
}

// MovieSummary is a catalog row: a movie with the screen it plays on,
// the first and last show dates, and its distinct show times.
type MovieSummary struct {
	Movie
	ScreenName   string
	ScreenNumber int
	StartDate    string   // earliest schedules.show_date
	StopDate     string   // latest schedules.show_date
	ShowTimes    []string // distinct schedules.show_time, ascending
}

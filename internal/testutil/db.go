// Package testutil opens throwaway SQLite databases with the application
// schema and seeds catalog rows for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/database"
)

// NewDB returns a migrated SQLite database that is closed when the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:  database.DriverSQLite,
		Path:    filepath.Join(t.TempDir(), "booking.db"),
		Migrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Catalog holds the ids created by SeedCatalog.
type Catalog struct {
	AdminID    uint64
	CustomerID uint64
	ScreenID   uint64
	MovieID    uint64
	ShowingIDs []uint64
}

// SeedUser inserts a user with a placeholder password hash.
func SeedUser(t testing.TB, db *sql.DB, username, role string) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		username, username+"@example.com", "x", role)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// SeedScreen inserts a screen with the given capacity.
func SeedScreen(t testing.TB, db *sql.DB, number, capacity int) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO screens (name, screen_number, number_of_seats) VALUES (?, ?, ?)`,
		"Audi", number, capacity)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// SeedMovie inserts a movie on screenID with one showing per date/time pair.
func SeedMovie(t testing.TB, db *sql.DB, title string, screenID uint64, dates, times []string) (uint64, []uint64) {
	t.Helper()
	res, err := db.Exec(`INSERT INTO movies (title, screen_id) VALUES (?, ?)`, title, screenID)
	require.NoError(t, err)
	movieID, err := res.LastInsertId()
	require.NoError(t, err)

	var showings []uint64
	for _, d := range dates {
		for _, tm := range times {
			res, err := db.Exec(
				`INSERT INTO schedules (movie_id, screen_id, show_date, show_time) VALUES (?, ?, ?, ?)`,
				movieID, screenID, d, tm)
			require.NoError(t, err)
			id, err := res.LastInsertId()
			require.NoError(t, err)
			showings = append(showings, uint64(id))
		}
	}
	return uint64(movieID), showings
}

// SeedCatalog creates an admin, a customer, a 100 seat screen and a movie
// with one showing per date at 18:30.
func SeedCatalog(t testing.TB, db *sql.DB, dates ...string) Catalog {
	t.Helper()
	if len(dates) == 0 {
		dates = []string{"2030-01-15"}
	}
	c := Catalog{
		AdminID:    SeedUser(t, db, "admin", "ADMIN"),
		CustomerID: SeedUser(t, db, "alice", "CUSTOMER"),
		ScreenID:   SeedScreen(t, db, 1, 100),
	}
	c.MovieID, c.ShowingIDs = SeedMovie(t, db, "Interstellar", c.ScreenID, dates, []string{"18:30:00"})
	return c
}

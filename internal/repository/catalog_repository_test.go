package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/testutil"
)

func TestScreenRepo_CreateAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewScreenRepo(db)
	ctx := context.Background()

	s := &model.Screen{Name: "Audi 4", ScreenNumber: 4, NumberOfSeats: 120}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID)

	err := repo.Create(ctx, &model.Screen{Name: "Dup", ScreenNumber: 4, NumberOfSeats: 10})
	assert.ErrorIs(t, err, ErrScreenNumberExists)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrScreenNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 120, list[0].NumberOfSeats)
}

func TestScreenRepo_GetByShowing(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)

	s, err := NewScreenRepo(db).GetByShowing(context.Background(), cat.ShowingIDs[0])
	require.NoError(t, err)
	assert.Equal(t, cat.ScreenID, s.ID)
	assert.Equal(t, 100, s.NumberOfSeats)

	_, err = NewScreenRepo(db).GetByShowing(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrScreenNotFound)
}

func TestScheduleRepo_CreateListAndReschedule(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db, "2030-01-15", "2030-01-16")
	repo := NewScheduleRepo(db)
	ctx := context.Background()

	s := &model.Showing{MovieID: cat.MovieID, ScreenID: cat.ScreenID, ShowDate: "2030-01-15", ShowTime: "10:00:00"}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID)

	dup := &model.Showing{MovieID: cat.MovieID, ScreenID: cat.ScreenID, ShowDate: "2030-01-15", ShowTime: "10:00:00"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrShowingExists)

	onDate, err := repo.ListByMovieOnDate(ctx, cat.MovieID, "2030-01-15")
	require.NoError(t, err)
	require.Len(t, onDate, 2)
	assert.Equal(t, "10:00:00", onDate[0].ShowTime)
	assert.Equal(t, "18:30:00", onDate[1].ShowTime)

	all, err := repo.ListByMovie(ctx, cat.MovieID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	fromSecond, err := repo.ListAll(ctx, "2030-01-16")
	require.NoError(t, err)
	assert.Len(t, fromSecond, 1)

	moved, err := repo.Reschedule(ctx, s.ID, "2030-01-17", "11:15:00")
	require.NoError(t, err)
	assert.Equal(t, "2030-01-17", moved.ShowDate)
	assert.Equal(t, "11:15:00", moved.ShowTime)

	_, err = repo.Reschedule(ctx, s.ID, "2030-01-17", "11:15:00")
	assert.ErrorIs(t, err, ErrNoChange)

	_, err = repo.Reschedule(ctx, s.ID, "2030-01-15", "18:30:00")
	assert.ErrorIs(t, err, ErrShowingExists)

	_, err = repo.Reschedule(ctx, 999, "2030-01-17", "11:15:00")
	assert.ErrorIs(t, err, ErrShowingNotFound)
}

func TestScheduleRepo_RescheduleBlockedBySoldTickets(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	ctx := context.Background()
	showing, err := NewScheduleRepo(db).GetByID(ctx, cat.ShowingIDs[0])
	require.NoError(t, err)
	require.NoError(t, insertTicket(t, db, newTicket("TKT-1-4444", cat, showing, []int{1}, nil)))

	_, err = NewScheduleRepo(db).Reschedule(ctx, showing.ID, "2030-02-01", "18:30:00")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMovieRepo_SearchNowShowing(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db, "2030-01-10", "2030-01-20")
	testutil.SeedMovie(t, db, "Old Classic", cat.ScreenID, []string{"2020-05-01"}, []string{"12:00:00"})
	testutil.SeedMovie(t, db, "Dune", cat.ScreenID, []string{"2030-01-12"}, []string{"21:00:00", "09:30:00"})
	repo := NewMovieRepo(db)
	ctx := context.Background()

	rows, total, err := repo.SearchNowShowing(ctx, MovieSearchQuery{Today: "2030-01-11", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dune", rows[0].Title)
	assert.Equal(t, []string{"09:30:00", "21:00:00"}, rows[0].ShowTimes)
	assert.Equal(t, "Interstellar", rows[1].Title)
	assert.Equal(t, "2030-01-10", rows[1].StartDate)
	assert.Equal(t, "2030-01-20", rows[1].StopDate)
	assert.Equal(t, 1, rows[1].ScreenNumber)

	rows, total, err = repo.SearchNowShowing(ctx, MovieSearchQuery{Title: "stell", Today: "2030-01-11", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, cat.MovieID, rows[0].ID)

	rows, total, err = repo.SearchNowShowing(ctx, MovieSearchQuery{Today: "2030-01-11", Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Interstellar", rows[0].Title)
}

func TestMovieRepo_CreateGetAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	repo := NewMovieRepo(db)
	ctx := context.Background()

	desc := "A heist in dreams"
	m := &model.Movie{Title: "Inception", Description: &desc, ScreenID: cat.ScreenID, CreatedBy: &cat.AdminID}
	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, m))
	require.NoError(t, NewScheduleRepo(db).CreateTx(ctx, tx, &model.Showing{
		MovieID: m.ID, ScreenID: cat.ScreenID, ShowDate: "2030-03-01", ShowTime: "20:00:00",
	}))
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Nil(t, got.PosterURL)

	sum, err := repo.GetSummary(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-01", sum.StartDate)
	assert.Equal(t, []string{"20:00:00"}, sum.ShowTimes)

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), ErrMovieNotFound)
}

func TestMovieRepo_DeleteBlockedBySoldTickets(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	ctx := context.Background()
	showing, err := NewScheduleRepo(db).GetByID(ctx, cat.ShowingIDs[0])
	require.NoError(t, err)
	require.NoError(t, insertTicket(t, db, newTicket("TKT-1-5555", cat, showing, nil, []int{1})))

	assert.ErrorIs(t, NewMovieRepo(db).Delete(ctx, cat.MovieID), ErrConflict)
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var (
	// ErrShowingNotFound indicates that a schedule row was not located.
	ErrShowingNotFound = errors.New("showing not found")
	// ErrShowingExists is returned when the movie already plays at that
	// date and time.
	ErrShowingExists = errors.New("showing already exists")
)

// ScheduleRepo manages the schedules table. Each row is one showing.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB {
	return r.db
}

const scheduleColumns = `id, movie_id, screen_id, show_date, show_time, created_at`

// Create inserts a showing and populates its ID.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Showing) error {
	return r.create(ctx, r.db, s)
}

// CreateTx inserts a showing inside the caller's transaction.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Showing) error {
	return r.create(ctx, tx, s)
}

func (r *ScheduleRepo) create(ctx context.Context, q queryer, s *model.Showing) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO schedules (movie_id, screen_id, show_date, show_time) VALUES (?, ?, ?, ?)`,
		s.MovieID, s.ScreenID, s.ShowDate, s.ShowTime)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrShowingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.getByID(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID retrieves a showing by its schedule id.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Showing, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *ScheduleRepo) getByID(ctx context.Context, q queryer, id uint64) (*model.Showing, error) {
	s, err := scanShowing(q.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowingNotFound
	}
	return s, err
}

// ListByMovie returns every showing of a movie ordered by date and time.
func (r *ScheduleRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Showing, error) {
	return r.list(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE movie_id = ? ORDER BY show_date ASC, show_time ASC`,
		movieID)
}

// ListByMovieOnDate returns the showings of a movie on one date.
func (r *ScheduleRepo) ListByMovieOnDate(ctx context.Context, movieID uint64, date string) ([]model.Showing, error) {
	return r.list(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE movie_id = ? AND show_date = ? ORDER BY show_time ASC`,
		movieID, date)
}

// ListAll returns every showing on or after fromDate. An empty fromDate
// returns all showings.
func (r *ScheduleRepo) ListAll(ctx context.Context, fromDate string) ([]model.Showing, error) {
	if fromDate == "" {
		return r.list(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY show_date ASC, show_time ASC, movie_id ASC`)
	}
	return r.list(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE show_date >= ? ORDER BY show_date ASC, show_time ASC, movie_id ASC`,
		fromDate)
}

func (r *ScheduleRepo) list(ctx context.Context, query string, args ...any) ([]model.Showing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Showing{}
	for rows.Next() {
		s, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Reschedule moves a showing to a new date and time. Showings that have
// sold tickets cannot be moved (ErrConflict), because tickets reference
// the performance by date and time.
func (r *ScheduleRepo) Reschedule(ctx context.Context, id uint64, date, clock string) (*model.Showing, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cur, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if cur.ShowDate == date && cur.ShowTime == clock {
		return nil, ErrNoChange
	}
	var sold int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE schedule_id = ?`, id).Scan(&sold); err != nil {
		return nil, err
	}
	if sold > 0 {
		return nil, ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE schedules SET show_date = ?, show_time = ? WHERE id = ?`, date, clock, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrShowingExists
		}
		return nil, err
	}
	updated, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

func scanShowing(row rowScanner) (*model.Showing, error) {
	var (
		s       model.Showing
		date    dbDate
		clock   dbClock
		created dbTime
	)
	if err := row.Scan(&s.ID, &s.MovieID, &s.ScreenID, &date, &clock, &created); err != nil {
		return nil, err
	}
	s.ShowDate, s.ShowTime, s.CreatedAt = string(date), string(clock), created.Time
	return &s, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// DB exposes the underlying sql.DB. Adding a movie together with its
// showings runs in one transaction started from here.
func (r *MovieRepo) DB() *sql.DB {
	return r.db
}

const movieColumns = `id, title, description, poster_url, screen_id, created_by, created_at`

// CreateTx inserts a movie using the provided transaction. The caller
// commits or rolls back. On success ID and CreatedAt are populated.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO movies (title, description, poster_url, screen_id, created_by) VALUES (?, ?, ?, ?, ?)`,
		m.Title, stringArg(m.Description), stringArg(m.PosterURL), m.ScreenID, uintArg(m.CreatedBy))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.getByID(ctx, tx, uint64(id))
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// GetByID retrieves a movie by its ID.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *MovieRepo) getByID(ctx context.Context, q queryer, id uint64) (*model.Movie, error) {
	var (
		m           model.Movie
		description sql.NullString
		poster      sql.NullString
		createdBy   sql.NullInt64
		created     dbTime
	)
	err := q.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id).Scan(
		&m.ID, &m.Title, &description, &poster, &m.ScreenID, &createdBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Description, m.PosterURL = nullString(description), nullString(poster)
	m.CreatedBy, m.CreatedAt = nullUint(createdBy), created.Time
	return &m, nil
}

// Delete removes a movie and its showings. Movies with sold tickets are
// kept and ErrConflict is returned.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := r.getByID(ctx, tx, id); err != nil {
		return err
	}
	var sold int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE movie_id = ?`, id).Scan(&sold); err != nil {
		return err
	}
	if sold > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE movie_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

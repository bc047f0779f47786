package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var (
	// ErrScreenNotFound indicates that a screen was not located in the DB.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrScreenNumberExists is returned when another screen already uses
	// the same screen number.
	ErrScreenNumberExists = errors.New("screen number already exists")
)

// ScreenRepo manages persistence for screens.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo constructs a ScreenRepo with the given DB handle.
func NewScreenRepo(db *sql.DB) *ScreenRepo {
	return &ScreenRepo{db: db}
}

const screenColumns = `id, name, screen_number, number_of_seats, created_at`

// Create inserts a screen and populates its ID and created_at.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO screens (name, screen_number, number_of_seats) VALUES (?, ?, ?)`,
		s.Name, s.ScreenNumber, s.NumberOfSeats)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrScreenNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID retrieves a screen by its ID.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	return scanScreen(r.db.QueryRowContext(ctx,
		`SELECT `+screenColumns+` FROM screens WHERE id = ?`, id))
}

// GetByShowing returns the screen a schedule plays on.
func (r *ScreenRepo) GetByShowing(ctx context.Context, scheduleID uint64) (*model.Screen, error) {
	return scanScreen(r.db.QueryRowContext(ctx,
		`SELECT sc.id, sc.name, sc.screen_number, sc.number_of_seats, sc.created_at
		   FROM screens sc
		   JOIN schedules s ON s.screen_id = sc.id
		  WHERE s.id = ?`, scheduleID))
}

// List returns all screens ordered by screen number.
func (r *ScreenRepo) List(ctx context.Context) ([]model.Screen, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+screenColumns+` FROM screens ORDER BY screen_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Screen{}
	for rows.Next() {
		s, err := scanScreen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreen(row rowScanner) (*model.Screen, error) {
	var (
		s       model.Screen
		created dbTime
	)
	err := row.Scan(&s.ID, &s.Name, &s.ScreenNumber, &s.NumberOfSeats, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScreenNotFound
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = created.Time
	return &s, nil
}

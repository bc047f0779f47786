package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MovieSearchQuery defines filters & pagination for the now-showing list.
// Today is the caller's current date (YYYY-MM-DD); movies whose last show
// date is before it are excluded.
type MovieSearchQuery struct {
	Title    string
	Today    string
	Page     int
	PageSize int
}

const summarySelect = `SELECT
		m.id, m.title, m.description, m.poster_url, m.screen_id, m.created_by, m.created_at,
		COALESCE(sc.name, ''), COALESCE(sc.screen_number, 0),
		MIN(s.show_date), MAX(s.show_date)
	FROM movies m
	JOIN schedules s     ON s.movie_id = m.id
	LEFT JOIN screens sc ON sc.id = m.screen_id`

const summaryGroup = ` GROUP BY m.id, m.title, m.description, m.poster_url, m.screen_id, m.created_by, m.created_at, sc.name, sc.screen_number`

// SearchNowShowing lists movies still playing on or after q.Today,
// ordered by title, with their date window and show times.
func (r *MovieRepo) SearchNowShowing(ctx context.Context, q MovieSearchQuery) ([]model.MovieSummary, int64, error) {
	where := []string{}
	args := []any{}
	if q.Title != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	having := " HAVING MAX(s.show_date) >= ?"
	args = append(args, q.Today)

	var total int64
	countSQL := `SELECT COUNT(*) FROM (
		SELECT m.id
		FROM movies m
		JOIN schedules s ON s.movie_id = m.id
		WHERE ` + cond + `
		GROUP BY m.id` + having + `) t`
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := summarySelect + ` WHERE ` + cond + summaryGroup + having + ` ORDER BY m.title ASC, m.id ASC LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	out, err := r.querySummaries(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetSummary returns one movie with its date window and show times. Movies
// without showings are reported as ErrMovieNotFound.
func (r *MovieRepo) GetSummary(ctx context.Context, id uint64) (*model.MovieSummary, error) {
	out, err := r.querySummaries(ctx, summarySelect+` WHERE m.id = ?`+summaryGroup, id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrMovieNotFound
	}
	return &out[0], nil
}

func (r *MovieRepo) querySummaries(ctx context.Context, query string, args ...any) ([]model.MovieSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MovieSummary{}
	ids := []any{}
	for rows.Next() {
		var (
			d           model.MovieSummary
			description sql.NullString
			poster      sql.NullString
			createdBy   sql.NullInt64
			created     dbTime
			start, stop dbDate
		)
		if err := rows.Scan(
			&d.ID, &d.Title, &description, &poster, &d.ScreenID, &createdBy, &created,
			&d.ScreenName, &d.ScreenNumber, &start, &stop,
		); err != nil {
			return nil, err
		}
		d.Description, d.PosterURL = nullString(description), nullString(poster)
		d.CreatedBy, d.CreatedAt = nullUint(createdBy), created.Time
		d.StartDate, d.StopDate = string(start), string(stop)
		out = append(out, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	times, err := r.showTimes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ShowTimes = times[out[i].ID]
		if out[i].ShowTimes == nil {
			out[i].ShowTimes = []string{}
		}
	}
	return out, nil
}

// showTimes loads the distinct show times per movie id.
func (r *MovieRepo) showTimes(ctx context.Context, ids []any) (map[uint64][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT movie_id, show_time FROM schedules WHERE movie_id IN (`+placeholders(len(ids))+`)
		 ORDER BY movie_id ASC, show_time ASC`, ids...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64][]string{}
	for rows.Next() {
		var (
			id    uint64
			clock dbClock
		)
		if err := rows.Scan(&id, &clock); err != nil {
			return nil, err
		}
		out[id] = append(out[id], string(clock))
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQL returns DATE as time.Time and TIME as bytes; SQLite stores both as
// text. The scanners below normalise either into the model's string forms.

type dbDate string

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = dbDate(v.Format(model.DateLayout))
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
	return nil
}

func (d *dbDate) parse(s string) error {
	if len(s) < len(model.DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = dbDate(s[:len(model.DateLayout)])
	return nil
}

type dbClock string

func (c *dbClock) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		*c = dbClock(v.Format(model.ClockLayout))
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into clock", src)
	}
	t, err := time.Parse(model.ClockLayout, s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}
	*c = dbClock(t.Format(model.ClockLayout))
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	// time.Time.String(), written by the SQLite driver without _time_format
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

// dbTime scans DATETIME values. Valid is false for NULL.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*t = dbTime{}
		return nil
	case time.Time:
		*t = dbTime{Time: v.UTC(), Valid: true}
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = dbTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullUint(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

// stringArg passes a nullable string as a query argument.
func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// uintArg passes a nullable id as a query argument.
func uintArg(n *uint64) any {
	if n == nil {
		return nil
	}
	return int64(*n)
}

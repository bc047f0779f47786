package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteAppliesSchemaOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.db")
	db, err := Open(Options{Driver: DriverSQLite, Path: path, Migrate: true})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
	for _, table := range []string{"users", "refresh_tokens", "screens", "movies", "schedules", "tickets", "ticket_seats"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
	require.NoError(t, db.Close())

	// Re-opening does not re-run the migration.
	db, err = Open(Options{Driver: DriverSQLite, Path: path, Migrate: true})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "postgres"})
	assert.ErrorContains(t, err, "unsupported db driver")
}

func TestOpen_SQLiteRequiresPath(t *testing.T) {
	_, err := Open(Options{Driver: DriverSQLite})
	assert.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements("CREATE TABLE a (x INT);\n\nCREATE INDEX i ON a(x);\n  ")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, got)
}

func TestExtractUpMigration(t *testing.T) {
	got := ExtractUpMigration("-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;")
	assert.Equal(t, "\nCREATE TABLE a (x INT);\n", got)
	assert.Equal(t, "SELECT 1", ExtractUpMigration("SELECT 1"))
}

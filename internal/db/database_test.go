package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/config"
)

func openTestSQLite(t *testing.T) *Database {
	t.Helper()
	database, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.SQL.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return database
}

func countItems(t *testing.T, database *Database) int {
	t.Helper()
	var n int
	require.NoError(t, database.SQL.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestWithTransaction_Commits(t *testing.T) {
	database := openTestSQLite(t)

	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, database))
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	database := openTestSQLite(t)
	boom := errors.New("boom")

	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countItems(t, database))
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	database := openTestSQLite(t)

	assert.Panics(t, func() {
		_ = database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
			panic("unexpected")
		})
	})
	assert.Equal(t, 0, countItems(t, database))
}

func TestStatementBuilderPlaceholders(t *testing.T) {
	query, _, err := StatementBuilder(config.DriverPostgres).Select("id").From("items").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM items WHERE id = $1", query)

	query, _, err = StatementBuilder(config.DriverSQLite).Select("id").From("items").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM items WHERE id = ?", query)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/baderkha/dbporter/pkg/migrate/connection"
	"github.com/baderkha/dbporter/pkg/migrate/dialect"
	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/baderkha/dbporter/pkg/migrate/table"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDest(t *testing.T) *sql.DB {
	t.Helper()
	db, err := connection.Dial(context.Background(), connection.Options{
		Driver:       dialect.Sqlite,
		DSN:          filepath.Join(t.TempDir(), "dest.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)`)
	require.NoError(t, err)
	return db
}

func rowSet(t *testing.T, n int) *table.RowSet {
	t.Helper()
	rs := table.NewRowSet([]string{"id", "label"})
	for i := 1; i <= n; i++ {
		label := table.Text(fmt.Sprintf("l%d", i))
		if i%2 == 0 {
			label = table.Null()
		}
		require.NoError(t, rs.Append([]table.Value{table.Text(fmt.Sprint(i)), label}))
	}
	return rs
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestLoadInBatches(t *testing.T) {
	db := newDest(t)
	d, _ := dialect.For(dialect.Sqlite)
	l := New(db, d, 3, zerolog.Nop())

	n, err := l.Load(context.Background(), rowSet(t, 7), "items")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, count(t, db, `SELECT COUNT(*) FROM items`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM items WHERE label IS NULL`))
}

func TestLoadEmptyIsNoop(t *testing.T) {
	db := newDest(t)
	d, _ := dialect.For(dialect.Sqlite)
	n, err := New(db, d, 0, zerolog.Nop()).Load(context.Background(), table.NewRowSet([]string{"id"}), "items")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadConstraintViolation(t *testing.T) {
	db := newDest(t)
	d, _ := dialect.For(dialect.Sqlite)
	_, err := db.Exec(`INSERT INTO items VALUES (5, 'taken')`)
	require.NoError(t, err)

	n, err := New(db, d, 2, zerolog.Nop()).Load(context.Background(), rowSet(t, 6), "items")
	var loadErr *errs.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "items", loadErr.Table)
	assert.Equal(t, 4, n, "batches before the failing one stay committed")
	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM items`))
}

func TestLoadMissingTable(t *testing.T) {
	db := newDest(t)
	d, _ := dialect.For(dialect.Sqlite)
	_, err := New(db, d, 10, zerolog.Nop()).Load(context.Background(), rowSet(t, 1), "nope")
	assert.True(t, errs.IsDatabaseFailure(err))
}

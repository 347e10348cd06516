package dialect

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestFor(t *testing.T) {
	for _, typ := range []Type{Mysql, Snowflake, SqlServer, Postgres, Sqlite, "mssql", "postgres"} {
		d, err := For(typ)
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}
	_, err := For("oracle")
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Mysql, "INSERT INTO `orders` (`id`, `name`) VALUES (?, ?)"},
		{Sqlite, `INSERT INTO "orders" ("id", "name") VALUES (?, ?)`},
		{Postgres, `INSERT INTO "orders" ("id", "name") VALUES ($1, $2)`},
		{SqlServer, `INSERT INTO [orders] ([id], [name]) VALUES (@p1, @p2)`},
	}
	for _, tt := range tests {
		d, err := For(tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Insert(d, "orders", []string{"id", "name"}))
	}
}

func TestQuoteEscapes(t *testing.T) {
	d, _ := For(Mysql)
	assert.Equal(t, "`a``b`", d.QuoteIdent("a`b"))
	d, _ = For(SqlServer)
	assert.Equal(t, "[a]]b]", d.QuoteIdent("a]b"))
}

func TestCreateViewTrimsTerminator(t *testing.T) {
	d, _ := For(Sqlite)
	assert.Equal(t, `CREATE VIEW "v" AS SELECT 1`, d.CreateView("v", "  SELECT 1 ;\n"))
}

func TestSqlServerDropView(t *testing.T) {
	d, _ := For(SqlServer)
	assert.Equal(t, "IF OBJECT_ID(N'o''k', N'V') IS NOT NULL DROP VIEW [o'k]", d.DropViewIfExists("o'k"))
}

func TestForeignKeyToggles(t *testing.T) {
	d, _ := For(Mysql)
	assert.Equal(t, "SET FOREIGN_KEY_CHECKS = 0", d.DisableForeignKeys())
	assert.Equal(t, "SET FOREIGN_KEY_CHECKS = 1", d.EnableForeignKeys())
	d, _ = For(Snowflake)
	assert.Empty(t, d.DisableForeignKeys())
}

func TestForeignKeysQuery(t *testing.T) {
	d, _ := For(Sqlite)
	assert.Equal(t, "PRAGMA foreign_keys", d.ForeignKeysQuery())
	d, _ = For(Mysql)
	assert.Equal(t, "SELECT @@SESSION.foreign_key_checks", d.ForeignKeysQuery())
	d, _ = For(SqlServer)
	assert.Empty(t, d.ForeignKeysQuery())
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	d, _ := For(Sqlite)
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer db.Close()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	on, err := ForeignKeysEnforced(ctx, d, conn)
	require.NoError(t, err)
	assert.False(t, on, "sqlite starts with enforcement off")

	_, err = conn.ExecContext(ctx, d.EnableForeignKeys())
	require.NoError(t, err)
	on, err = ForeignKeysEnforced(ctx, d, conn)
	require.NoError(t, err)
	assert.True(t, on)

	sqlServer, _ := For(SqlServer)
	on, err = ForeignKeysEnforced(ctx, sqlServer, conn)
	require.NoError(t, err)
	assert.True(t, on, "no query means assume enforced")
}

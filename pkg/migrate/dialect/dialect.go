// package dialect
//
// the SQL text each backend needs for truncating, toggling foreign keys, views and inserts
package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Type : database/sql driver name a dialect belongs to
type Type string

const (
	Mysql     Type = "mysql"
	Snowflake Type = "snowflake"
	SqlServer Type = "sqlserver"
	Postgres  Type = "pgx"
	Sqlite    Type = "sqlite"
)

// Dialect : backend specific statements. Empty strings mean "nothing to run".
type Dialect interface {
	Type() Type
	QuoteIdent(name string) string
	// Placeholder : bind parameter for the n-th (1 based) argument
	Placeholder(n int) string
	DisableForeignKeys() string
	EnableForeignKeys() string
	// ForeignKeysQuery : single value query telling whether the session enforces foreign keys
	ForeignKeysQuery() string
	Truncate(table string) string
	DropViewIfExists(name string) string
	CreateView(name string, query string) string
	SelectAll(name string) string
}

// For : looks up the dialect for a driver name
func For(t Type) (Dialect, error) {
	switch t {
	case Mysql:
		return mysqlDialect{}, nil
	case Snowflake:
		return snowflakeDialect{}, nil
	case SqlServer, "mssql":
		return sqlServerDialect{}, nil
	case Postgres, "postgres":
		return postgresDialect{}, nil
	case Sqlite:
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("dialect : unsupported driver %s", t)
}

// Insert : single row INSERT for the given columns
func Insert(d Dialect, table string, columns []string) string {
	cols := make([]string, len(columns))
	binds := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = d.QuoteIdent(c)
		binds[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.QuoteIdent(table), strings.Join(cols, ", "), strings.Join(binds, ", "))
}

// ForeignKeysEnforced : whether the session behind conn currently enforces foreign keys.
// Dialects without a query are assumed to enforce them.
func ForeignKeysEnforced(ctx context.Context, d Dialect, conn *sql.Conn) (bool, error) {
	q := d.ForeignKeysQuery()
	if q == "" {
		return true, nil
	}
	var v string
	if err := conn.QueryRowContext(ctx, q).Scan(&v); err != nil {
		return false, fmt.Errorf("dialect : could not read foreign key state : %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "off", "false", "replica":
		return false, nil
	}
	return true, nil
}

// TrimQuery : strips trailing whitespace and semicolons so the text can be wrapped in a view
func TrimQuery(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
}

func quote(name string, open string, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

package dialect

import (
	"fmt"
	"strings"
)

type mysqlDialect struct{}

func (mysqlDialect) Type() Type                    { return Mysql }
func (mysqlDialect) QuoteIdent(name string) string { return quote(name, "`", "`") }
func (mysqlDialect) Placeholder(int) string        { return "?" }
func (mysqlDialect) DisableForeignKeys() string    { return "SET FOREIGN_KEY_CHECKS = 0" }
func (mysqlDialect) EnableForeignKeys() string     { return "SET FOREIGN_KEY_CHECKS = 1" }
func (mysqlDialect) ForeignKeysQuery() string      { return "SELECT @@SESSION.foreign_key_checks" }
func (d mysqlDialect) Truncate(table string) string {
	return "TRUNCATE TABLE " + d.QuoteIdent(table)
}
func (d mysqlDialect) DropViewIfExists(name string) string {
	return "DROP VIEW IF EXISTS " + d.QuoteIdent(name)
}
func (d mysqlDialect) CreateView(name string, query string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", d.QuoteIdent(name), TrimQuery(query))
}
func (d mysqlDialect) SelectAll(name string) string { return "SELECT * FROM " + d.QuoteIdent(name) }

// snowflake does not enforce foreign keys so there is nothing to toggle
type snowflakeDialect struct{}

func (snowflakeDialect) Type() Type                    { return Snowflake }
func (snowflakeDialect) QuoteIdent(name string) string { return quote(name, `"`, `"`) }
func (snowflakeDialect) Placeholder(int) string        { return "?" }
func (snowflakeDialect) DisableForeignKeys() string    { return "" }
func (snowflakeDialect) EnableForeignKeys() string     { return "" }
func (snowflakeDialect) ForeignKeysQuery() string      { return "" }
func (d snowflakeDialect) Truncate(table string) string {
	return "TRUNCATE TABLE IF EXISTS " + d.QuoteIdent(table)
}
func (d snowflakeDialect) DropViewIfExists(name string) string {
	return "DROP VIEW IF EXISTS " + d.QuoteIdent(name)
}
func (d snowflakeDialect) CreateView(name string, query string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", d.QuoteIdent(name), TrimQuery(query))
}
func (d snowflakeDialect) SelectAll(name string) string {
	return "SELECT * FROM " + d.QuoteIdent(name)
}

type sqlServerDialect struct{}

func (sqlServerDialect) Type() Type                    { return SqlServer }
func (sqlServerDialect) QuoteIdent(name string) string { return quote(name, "[", "]") }
func (sqlServerDialect) Placeholder(n int) string      { return fmt.Sprintf("@p%d", n) }
func (sqlServerDialect) DisableForeignKeys() string {
	return `EXEC sp_MSforeachtable "ALTER TABLE ? NOCHECK CONSTRAINT ALL"`
}
func (sqlServerDialect) EnableForeignKeys() string {
	return `EXEC sp_MSforeachtable "ALTER TABLE ? WITH CHECK CHECK CONSTRAINT ALL"`
}

// constraint checks are per table, not per session
func (sqlServerDialect) ForeignKeysQuery() string { return "" }

// TRUNCATE is refused on tables referenced by a foreign key even with NOCHECK, DELETE is not
func (d sqlServerDialect) Truncate(table string) string {
	return "DELETE FROM " + d.QuoteIdent(table)
}
func (d sqlServerDialect) DropViewIfExists(name string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'V') IS NOT NULL DROP VIEW %s", strings.ReplaceAll(name, "'", "''"), d.QuoteIdent(name))
}
func (d sqlServerDialect) CreateView(name string, query string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", d.QuoteIdent(name), TrimQuery(query))
}
func (d sqlServerDialect) SelectAll(name string) string {
	return "SELECT * FROM " + d.QuoteIdent(name)
}

type postgresDialect struct{}

func (postgresDialect) Type() Type                    { return Postgres }
func (postgresDialect) QuoteIdent(name string) string { return quote(name, `"`, `"`) }
func (postgresDialect) Placeholder(n int) string      { return fmt.Sprintf("$%d", n) }
func (postgresDialect) DisableForeignKeys() string {
	return "SET session_replication_role = replica"
}
func (postgresDialect) EnableForeignKeys() string {
	return "SET session_replication_role = DEFAULT"
}
func (postgresDialect) ForeignKeysQuery() string { return "SHOW session_replication_role" }

// TRUNCATE on postgres checks references regardless of replication role
func (d postgresDialect) Truncate(table string) string {
	return "DELETE FROM " + d.QuoteIdent(table)
}
func (d postgresDialect) DropViewIfExists(name string) string {
	return "DROP VIEW IF EXISTS " + d.QuoteIdent(name)
}
func (d postgresDialect) CreateView(name string, query string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", d.QuoteIdent(name), TrimQuery(query))
}
func (d postgresDialect) SelectAll(name string) string {
	return "SELECT * FROM " + d.QuoteIdent(name)
}

type sqliteDialect struct{}

func (sqliteDialect) Type() Type                    { return Sqlite }
func (sqliteDialect) QuoteIdent(name string) string { return quote(name, `"`, `"`) }
func (sqliteDialect) Placeholder(int) string        { return "?" }
func (sqliteDialect) DisableForeignKeys() string    { return "PRAGMA foreign_keys = OFF" }
func (sqliteDialect) EnableForeignKeys() string     { return "PRAGMA foreign_keys = ON" }
func (sqliteDialect) ForeignKeysQuery() string      { return "PRAGMA foreign_keys" }
func (d sqliteDialect) Truncate(table string) string {
	return "DELETE FROM " + d.QuoteIdent(table)
}
func (d sqliteDialect) DropViewIfExists(name string) string {
	return "DROP VIEW IF EXISTS " + d.QuoteIdent(name)
}
func (d sqliteDialect) CreateView(name string, query string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", d.QuoteIdent(name), TrimQuery(query))
}
func (d sqliteDialect) SelectAll(name string) string {
	return "SELECT * FROM " + d.QuoteIdent(name)
}

package connection

import (
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// DialSqlServer : the dsn is parsed up front so typos fail before any network traffic
func DialSqlServer(dsn string, qlog bool) (*sql.DB, error) {
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("SQLSERVER : bad dsn : %w", err)
	}
	return open("sqlserver", dsn, qlog)
}

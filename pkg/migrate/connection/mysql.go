package connection

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// DialMysql : scripts are executed as a whole file so multi statements are always switched on
func DialMysql(dsn string, qlog bool) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("MYSQL : Could not parse dsn due to : %w", err)
	}
	cfg.MultiStatements = true
	return open("mysql", cfg.FormatDSN(), qlog)
}

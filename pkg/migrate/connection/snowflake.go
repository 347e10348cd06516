package connection

import (
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"
)

func DialSnowflake(dsn string, qlog bool) (*sql.DB, error) {
	var res string
	db, err := open("snowflake", dsn, qlog)
	if err != nil {
		return nil, err
	}
	if err := db.QueryRow("SELECT 1").Scan(&res); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("SNOWFLAKE : can't ping snowflake via select 1 : %w", err)
	}
	if res != "1" {
		_ = db.Close()
		return nil, fmt.Errorf("SNOWFLAKE : select 1 returned %q", res)
	}
	return db, nil
}

package connection

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/baderkha/dbporter/pkg/migrate/dialect"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Options : how a single connection handle gets dialed
type Options struct {
	Driver       dialect.Type
	DSN          string
	QueryLogging bool
	// MaxOpenConns : 0 leaves the pool unbounded
	MaxOpenConns int
}

// AddLogger : reopens db through sqldb-logger so every statement is logged with its duration
func AddLogger(db *sql.DB, dsn string, driverName string) *sql.DB {
	loggerAdapter := zerologadapter.New(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).With().Str("driver", driverName).Logger())
	logged := sqldblogger.OpenDriver(dsn, db.Driver(), loggerAdapter,
		sqldblogger.WithWrapResult(false),
		sqldblogger.WithDurationFieldname("dur_ms"),
		sqldblogger.WithDurationUnit(sqldblogger.DurationMillisecond),
		sqldblogger.WithSQLQueryAsMessage(true),
		sqldblogger.WithSQLQueryFieldname("sql_query"),
	)
	_ = db.Close()
	return logged
}

// Dial : opens and pings a handle for any supported driver
func Dial(ctx context.Context, opts Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case dialect.Mysql:
		db, err = DialMysql(opts.DSN, opts.QueryLogging)
	case dialect.Snowflake:
		db, err = DialSnowflake(opts.DSN, opts.QueryLogging)
	case dialect.SqlServer, "mssql":
		db, err = DialSqlServer(opts.DSN, opts.QueryLogging)
	case dialect.Postgres, "postgres":
		db, err = open("pgx", opts.DSN, opts.QueryLogging)
	case dialect.Sqlite:
		db, err = open("sqlite", opts.DSN, opts.QueryLogging)
	default:
		return nil, fmt.Errorf("connection : unsupported driver %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connection : could not ping %s : %w", opts.Driver, err)
	}
	return db, nil
}

func open(driverName string, dsn string, qlog bool) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connection : could not open %s : %w", driverName, err)
	}
	if qlog {
		db = AddLogger(db, dsn, driverName)
	}
	return db, nil
}

// package load
//
// appends row sets into existing destination tables
package load

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baderkha/dbporter/pkg/migrate/dialect"
	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/baderkha/dbporter/pkg/migrate/table"
	"github.com/rs/zerolog"
)

const DefaultBatchSize = 5000

// Loader : writes in batches, one transaction per batch. It never touches the schema.
type Loader struct {
	db        *sql.DB
	dialect   dialect.Dialect
	batchSize int
	log       zerolog.Logger
}

func New(db *sql.DB, d dialect.Dialect, batchSize int, log zerolog.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{db: db, dialect: d, batchSize: batchSize, log: log}
}

// Load : appends every row of rs to name, returning how many rows were committed
func (l *Loader) Load(ctx context.Context, rs *table.RowSet, name string) (int, error) {
	if rs.Len() == 0 {
		return 0, nil
	}
	stmtSQL := dialect.Insert(l.dialect, name, rs.Columns)
	written := 0
	for start := 0; start < rs.Len(); start += l.batchSize {
		end := min(start+l.batchSize, rs.Len())
		if err := l.batch(ctx, stmtSQL, rs, start, end); err != nil {
			return written, &errs.LoadError{Table: name, Err: err}
		}
		written += end - start
		l.log.Debug().Str("table", name).Int("rows_written", written).Msg("batch committed")
	}
	return written, nil
}

func (l *Loader) batch(ctx context.Context, stmtSQL string, rs *table.RowSet, start int, end int) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx : %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert : %w", err)
	}
	defer stmt.Close()
	for i := start; i < end; i++ {
		if _, err := stmt.ExecContext(ctx, rs.Args(i)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d : %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit : %w", err)
	}
	return nil
}

package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baderkha/dbporter/pkg/migrate/connection"
	"github.com/baderkha/dbporter/pkg/migrate/dialect"
)

const (
	runTable  = "migration_checkpoint_run"
	unitTable = "migration_checkpoint_unit"
)

// SqliteManager : keeps the checkpoint in a local sqlite file. A run row marks that a
// checkpoint exists at all, so an empty set of units is still a checkpoint.
type SqliteManager struct {
	DB *sql.DB
}

// NewSqliteManager : opens the file at path and makes sure the tables exist
func NewSqliteManager(ctx context.Context, path string) (*SqliteManager, error) {
	db, err := connection.Dial(ctx, connection.Options{Driver: dialect.Sqlite, DSN: path, MaxOpenConns: 1})
	if err != nil {
		return nil, err
	}
	m := &SqliteManager{DB: db}
	if err := m.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *SqliteManager) migrate(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS ` + runTable + ` (run_id TEXT NOT NULL, saved_at TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS ` + unitTable + ` (unit_key TEXT PRIMARY KEY)`,
	} {
		if _, err := m.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("checkpoint : Could not migrate %w", err)
		}
	}
	return nil
}

func (m *SqliteManager) Load(ctx context.Context) (*Checkpoint, error) {
	var (
		cp      Checkpoint
		savedAt string
	)
	err := m.DB.QueryRowContext(ctx, `SELECT run_id, saved_at FROM `+runTable+` LIMIT 1`).Scan(&cp.RunID, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint : could not read run : %w", err)
	}
	cp.SavedAt, err = time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return nil, fmt.Errorf("checkpoint : bad saved_at %q : %w", savedAt, err)
	}
	rows, err := m.DB.QueryContext(ctx, `SELECT unit_key FROM `+unitTable+` ORDER BY unit_key`)
	if err != nil {
		return nil, fmt.Errorf("checkpoint : could not read units : %w", err)
	}
	defer rows.Close()
	cp.Keys = []Key{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("checkpoint : could not scan unit : %w", err)
		}
		cp.Keys = append(cp.Keys, Key(k))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint : could not read units : %w", err)
	}
	return &cp, nil
}

// Save : swaps the whole checkpoint inside one transaction
func (m *SqliteManager) Save(ctx context.Context, cp *Checkpoint) error {
	if cp.SavedAt.IsZero() {
		cp.SavedAt = currentTime()
	}
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkpoint : begin tx : %w", err)
	}
	if err := clearTables(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+runTable+` (run_id, saved_at) VALUES (?, ?)`, cp.RunID, cp.SavedAt.Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("checkpoint : could not save run : %w", err)
	}
	for _, k := range NewKeys(cp.Keys...).Sorted() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+unitTable+` (unit_key) VALUES (?)`, string(k)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("checkpoint : could not save unit : %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("checkpoint : commit : %w", err)
	}
	return nil
}

func (m *SqliteManager) Clear(ctx context.Context) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkpoint : begin tx : %w", err)
	}
	if err := clearTables(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (m *SqliteManager) Close() error {
	return m.DB.Close()
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, t := range []string{runTable, unitTable} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return fmt.Errorf("checkpoint : could not clear %s : %w", t, err)
		}
	}
	return nil
}

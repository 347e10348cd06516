// package extract
//
// reads one table out of a flat file or a source database into a row set
package extract

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/baderkha/dbporter/pkg/migrate/locate"
	"github.com/baderkha/dbporter/pkg/migrate/source"
	"github.com/baderkha/dbporter/pkg/migrate/table"
	"github.com/rs/zerolog"
)

// Locator : finds and reads the file backing a name
type Locator interface {
	Read(name string, scope errs.Scope) (locate.Location, string, error)
}

// Resolver : looks sources up by name
type Resolver interface {
	Resolve(name string) (*source.Source, error)
}

type Extractor struct {
	files    Locator
	sources  Resolver
	destName string
	log      zerolog.Logger
}

func New(files Locator, sources Resolver, destName string, log zerolog.Logger) *Extractor {
	return &Extractor{files: files, sources: sources, destName: destName, log: log}
}

// Plan : which source a table comes from and the file text that defines it
type Plan struct {
	Source *source.Source
	Body   string
}

// Prepare : resolves name without touching any database
func (e *Extractor) Prepare(name string) (*Plan, error) {
	loc, body, err := e.files.Read(name, errs.ScopeSource)
	if err != nil {
		return nil, err
	}
	src, err := e.sources.Resolve(loc.Owner)
	if err != nil {
		return nil, err
	}
	return &Plan{Source: src, Body: body}, nil
}

// Extract : row set for name
func (e *Extractor) Extract(ctx context.Context, name string) (*table.RowSet, error) {
	plan, err := e.Prepare(name)
	if err != nil {
		return nil, err
	}
	src := plan.Source

	var rs *table.RowSet
	if src.Kind == source.FlatFile {
		rs, err = ParseDelimited(plan.Body)
	} else {
		rs, err = e.query(ctx, src, name, plan.Body)
	}
	if err != nil {
		return nil, &errs.ExtractionError{Source: src.Name, Table: name, Relational: src.Kind == source.Relational, Err: err}
	}
	e.log.Info().
		Str("source", src.Name).
		Str("dest", e.destName).
		Str("table", name).
		Int("rows", rs.Len()).
		Msgf("[INSERT DATA]: %s.%s -> %s.%s", src.Name, name, e.destName, name)
	return rs, nil
}

func (e *Extractor) query(ctx context.Context, src *source.Source, name string, query string) (*table.RowSet, error) {
	if src.UseView {
		if err := e.createView(ctx, src, name, query); err != nil {
			return nil, err
		}
		query = src.Dialect.SelectAll(name)
	}
	rows, err := src.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanRows(rows)
}

// createView : some backends only accept complex queries as a read source once they are a view
func (e *Extractor) createView(ctx context.Context, src *source.Source, name string, query string) error {
	e.log.Info().Str("source", src.Name).Str("view", name).Msgf("[CREATE VIEW]: %s.%s", strings.ToUpper(src.Name), name)
	if _, err := src.DB.ExecContext(ctx, src.Dialect.DropViewIfExists(name)); err != nil {
		return fmt.Errorf("drop view %s : %w", name, err)
	}
	if _, err := src.DB.ExecContext(ctx, src.Dialect.CreateView(name, query)); err != nil {
		return fmt.Errorf("create view %s : %w", name, err)
	}
	return nil
}

// ScanRows : drains rows into a row set keeping every value as text
func ScanRows(rows *sql.Rows) (*table.RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns : %w", err)
	}
	rs := table.NewRowSet(columns)
	for rows.Next() {
		vals := make([]table.Value, len(columns))
		dest := make([]any, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan : %w", err)
		}
		if err := rs.Append(vals); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// ParseDelimited : tab separated when the header line holds a tab, comma separated
// otherwise. Empty fields become NULL.
func ParseDelimited(body string) (*table.RowSet, error) {
	body = strings.TrimPrefix(body, "\ufeff")
	header, _, _ := strings.Cut(body, "\n")

	r := csv.NewReader(strings.NewReader(body))
	// a stray quote inside an unquoted field is just text
	r.LazyQuotes = true
	if strings.Contains(header, "\t") {
		r.Comma = '\t'
	}
	columns, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("flat file has no header")
	}
	if err != nil {
		return nil, fmt.Errorf("header : %w", err)
	}
	rs := table.NewRowSet(columns)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		vals := make([]table.Value, len(rec))
		for i, f := range rec {
			if f != "" {
				vals[i] = table.Text(f)
			}
		}
		if err := rs.Append(vals); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

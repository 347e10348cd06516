package table

import (
	"database/sql"
	"fmt"
)

// Value : a column value kept as text. Invalid means SQL NULL.
type Value = sql.NullString

// Text : a non null value
func Text(s string) Value {
	return Value{String: s, Valid: true}
}

// Null : the SQL NULL value
func Null() Value {
	return Value{}
}

// RowSet : ordered rows of textual values with named columns. Values stay untyped so the
// destination decides how to coerce them.
type RowSet struct {
	Columns []string
	Rows    [][]Value
	index   map[string]int
}

// NewRowSet : empty row set with the given header
func NewRowSet(columns []string) *RowSet {
	rs := &RowSet{Columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, ok := rs.index[c]; !ok {
			rs.index[c] = i
		}
	}
	return rs
}

// Append : adds one row, the row must have one value per column
func (rs *RowSet) Append(row []Value) error {
	if len(row) != len(rs.Columns) {
		return fmt.Errorf("table : row length %d != columns length %d", len(row), len(rs.Columns))
	}
	rs.Rows = append(rs.Rows, row)
	return nil
}

func (rs *RowSet) Len() int {
	return len(rs.Rows)
}

// ColumnIndex : position of a column, false when the header does not carry it
func (rs *RowSet) ColumnIndex(column string) (int, bool) {
	i, ok := rs.index[column]
	return i, ok
}

// Row : a handle over row i that reads and writes straight through to the row set
func (rs *RowSet) Row(i int) *Row {
	return &Row{set: rs, idx: i}
}

// Each : hands every row to fn in order, stopping at the first error
func (rs *RowSet) Each(fn func(r *Row) error) error {
	for i := range rs.Rows {
		if err := fn(rs.Row(i)); err != nil {
			return fmt.Errorf("row %d : %w", i, err)
		}
	}
	return nil
}

// Args : row i as driver arguments, NULLs become nil
func (rs *RowSet) Args(i int) []any {
	args := make([]any, len(rs.Columns))
	for c, v := range rs.Rows[i] {
		if v.Valid {
			args[c] = v.String
		}
	}
	return args
}

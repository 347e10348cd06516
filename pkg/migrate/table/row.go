package table

import "fmt"

// Row : transform handle passed to row hooks. It holds no copy: Get reads the
// current value in the owning row set and Set writes back into it, so the
// loader running after the hook sees the change.
type Row struct {
	set *RowSet
	idx int
}

// Index : position of the row inside its row set
func (r *Row) Index() int {
	return r.idx
}

// Get : value of column, the second result is false when the value is NULL
func (r *Row) Get(column string) (string, bool, error) {
	c, ok := r.set.ColumnIndex(column)
	if !ok {
		return "", false, fmt.Errorf("table : unknown column %s", column)
	}
	v := r.set.Rows[r.idx][c]
	return v.String, v.Valid, nil
}

// Value : raw value of column
func (r *Row) Value(column string) (Value, error) {
	c, ok := r.set.ColumnIndex(column)
	if !ok {
		return Null(), fmt.Errorf("table : unknown column %s", column)
	}
	return r.set.Rows[r.idx][c], nil
}

// Set : overwrites column for this row only
func (r *Row) Set(column string, value string) error {
	return r.SetValue(column, Text(value))
}

// SetNull : overwrites column with NULL for this row only
func (r *Row) SetNull(column string) error {
	return r.SetValue(column, Null())
}

func (r *Row) SetValue(column string, value Value) error {
	c, ok := r.set.ColumnIndex(column)
	if !ok {
		return fmt.Errorf("table : unknown column %s", column)
	}
	r.set.Rows[r.idx][c] = value
	return nil
}

// Columns : header of the owning row set
func (r *Row) Columns() []string {
	return r.set.Columns
}

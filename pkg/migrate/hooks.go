package migrate

import (
	"strings"

	"github.com/baderkha/dbporter/pkg/migrate/table"
)

// RowHook : runs once per extracted row before the row set is loaded. Writes through the
// row handle are what gets loaded.
type RowHook func(row *table.Row) error

// builtin hooks every porter knows, registered hooks with the same name win
func builtinHooks() map[string]RowHook {
	return map[string]RowHook{
		"trim_space": func(r *table.Row) error {
			for _, c := range r.Columns() {
				v, ok, err := r.Get(c)
				if err != nil || !ok {
					continue
				}
				if err := r.Set(c, strings.TrimSpace(v)); err != nil {
					return err
				}
			}
			return nil
		},
		"blank_to_null": func(r *table.Row) error {
			for _, c := range r.Columns() {
				v, ok, err := r.Get(c)
				if err != nil || !ok || strings.TrimSpace(v) != "" {
					continue
				}
				if err := r.SetNull(c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

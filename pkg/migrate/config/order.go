package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	OptBeforeScript = "before_script"
	OptAfterScript  = "after_script"
	OptBeforeInsert = "before_insert"
)

// Order : one migration unit. In the job it is either "table" or ["table", {options}].
// Options are kept as decoded so that extra keys still take part in the unit identity.
type Order struct {
	Table   string
	Options map[string]any
}

// NewOrder : builds a unit programmatically
func NewOrder(table string, options map[string]any) Order {
	return Order{Table: table, Options: options}
}

// Identity : plain table name, or a (table, options) pair when options are set
func (o Order) Identity() any {
	if o.Options == nil {
		return o.Table
	}
	return []any{o.Table, o.Options}
}

func (o Order) BeforeScript() string { return o.option(OptBeforeScript) }
func (o Order) AfterScript() string  { return o.option(OptAfterScript) }

// BeforeInsert : name of the row hook to run over every extracted row
func (o Order) BeforeInsert() string { return o.option(OptBeforeInsert) }

func (o Order) option(key string) string {
	v, ok := o.Options[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (o *Order) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		o.Options = nil
		return json.Unmarshal(b, &o.Table)
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("order : expected a table name or [table, options] : %w", err)
	}
	if len(pair) == 0 || len(pair) > 2 {
		return fmt.Errorf("order : expected 1 or 2 elements got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &o.Table); err != nil {
		return fmt.Errorf("order : table name must be a string : %w", err)
	}
	o.Options = nil
	if len(pair) == 2 {
		if err := json.Unmarshal(pair[1], &o.Options); err != nil {
			return fmt.Errorf("order %s : options must be an object : %w", o.Table, err)
		}
	}
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Identity())
}

func (o Order) String() string {
	return o.Table
}

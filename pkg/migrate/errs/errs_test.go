package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDatabaseFailure(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"load", &LoadError{Table: "orders", Err: cause}, true},
		{"script", &ScriptExecutionError{Script: "pre", Err: cause}, true},
		{"relational extraction", &ExtractionError{Table: "t", Relational: true, Err: cause}, true},
		{"flat file extraction", &ExtractionError{Table: "t", Err: cause}, false},
		{"configuration", &ConfigurationError{Name: "x"}, false},
		{"not found", &NotFoundError{Name: "x", Scope: ScopeSource}, false},
		{"truncate", &TruncateError{Tables: []string{"a"}, Err: cause}, false},
		{"wrapped load", fmt.Errorf("unit orders : %w", &LoadError{Table: "orders", Err: cause}), true},
		{"plain", cause, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDatabaseFailure(tt.err))
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := error(&LoadError{Table: "orders", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "orders")
}

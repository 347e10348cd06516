// package errs
//
// error kinds raised while porting tables. Only database layer failures
// cause the in-memory checkpoint to be persisted before the run aborts.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError : a name was referenced that the job never registered
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error : %s : %s", e.Name, e.Reason)
}

// Scope : which bucket of the name map a lookup targeted
type Scope string

const (
	ScopeSource Scope = "SOURCE"
	ScopeDest   Scope = "DEST"
)

// NotFoundError : no .sql / .csv file backs the requested table or script
type NotFoundError struct {
	Name  string
	Scope Scope
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found : no file for %q in %s scope", e.Name, e.Scope)
}

// ExtractionError : reading a source failed. Relational is true when the
// failure came from a source database rather than a flat file.
type ExtractionError struct {
	Source     string
	Table      string
	Relational bool
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error : %s.%s : %v", e.Source, e.Table, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// LoadError : writing to the destination failed
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error : %s : %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ScriptExecutionError : a before / after / initial script failed against the destination
type ScriptExecutionError struct {
	Script string
	Err    error
}

func (e *ScriptExecutionError) Error() string {
	return fmt.Sprintf("script execution error : %s.sql : %v", e.Script, e.Err)
}

func (e *ScriptExecutionError) Unwrap() error { return e.Err }

// TruncateError : the truncate batch failed before any unit ran
type TruncateError struct {
	Tables []string
	Err    error
}

func (e *TruncateError) Error() string {
	return fmt.Sprintf("truncate error : %v : %v", e.Tables, e.Err)
}

func (e *TruncateError) Unwrap() error { return e.Err }

// IsDatabaseFailure : reports whether err should persist the checkpoint before propagating
func IsDatabaseFailure(err error) bool {
	var (
		loadErr   *LoadError
		scriptErr *ScriptExecutionError
		extErr    *ExtractionError
	)
	switch {
	case errors.As(err, &loadErr), errors.As(err, &scriptErr):
		return true
	case errors.As(err, &extErr):
		return extErr.Relational
	}
	return false
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/graphstmt/internal/engine"
	"github.com/roach88/graphstmt/internal/statement"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeReadFailed    = "E002" // Statement document could not be read
	ErrCodeParseFailed   = "E003" // Statement document is malformed
	ErrCodeInvalidParams = "E004" // --params is not a JSON object
	ErrCodeOpenFailed    = "E005" // Database could not be opened

	// Execution errors
	ErrCodeExecution      = "E101" // Store rejected the statement
	ErrCodeProtocol       = "E102" // Batched statement returned a malformed result
	ErrCodeBudgetExceeded = "E103" // Batched statement did not converge in time
	ErrCodeCancelled      = "E104" // Run interrupted
)

// LoadedStatement is a hydrated statement document.
type LoadedStatement struct {
	Path        string
	Statement   *statement.Statement
	Fingerprint string
}

// LoadError is a statement document that failed to load, with its code.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadStatements hydrates every path in order, stopping at the first
// failure.
func LoadStatements(paths []string) ([]LoadedStatement, error) {
	loaded := make([]LoadedStatement, 0, len(paths))
	for _, path := range paths {
		st, err := statement.LoadFile(path)
		if err != nil {
			code := ErrCodeGeneric
			switch {
			case statement.IsIOError(err):
				code = ErrCodeReadFailed
			case statement.IsParseError(err):
				code = ErrCodeParseFailed
			}
			msg := err.Error()
			if inner := errors.Unwrap(err); inner != nil {
				msg = inner.Error()
			}
			return nil, &LoadError{Code: code, Path: path, Message: msg, Err: err}
		}

		fp, err := st.Fingerprint()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error(), Err: err}
		}

		loaded = append(loaded, LoadedStatement{Path: path, Statement: st, Fingerprint: fp})
	}
	return loaded, nil
}

// WithParams returns a copy of the statement with params merged over its
// own. The loaded statement is not modified.
func (l LoadedStatement) WithParams(params map[string]any) *statement.Statement {
	st := l.Statement.Clone()
	st.MergeParameters(params)
	return st
}

// MapRunErrorToCode maps an execution error to an error code.
// Anything that is not a RunError came from the store.
func MapRunErrorToCode(err error) string {
	switch {
	case engine.IsProtocolFault(err):
		return ErrCodeProtocol
	case engine.IsBudgetExceeded(err):
		return ErrCodeBudgetExceeded
	case engine.IsCancelled(err):
		return ErrCodeCancelled
	default:
		return ErrCodeExecution
	}
}

// describe renders a one-line mode summary for text output.
func describe(st *statement.Statement) string {
	if !st.Iterative {
		return "single"
	}
	return fmt.Sprintf("iterative, batch %d", st.BatchSize)
}

// shortQuery collapses whitespace and truncates long query text.
func shortQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	runes := []rune(q)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return q
}

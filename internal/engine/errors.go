package engine

import (
	"errors"
	"fmt"
	"time"
)

// RunError is a terminal failure of the iterative protocol.
//
// Faults raised by the store itself are NOT wrapped in RunError: they are
// returned to the caller unchanged.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID correlates the error with the run's log lines.
	RunID string

	// Attempts is the number of store calls made before the failure.
	Attempts int

	// LastCompleted is the TotalCompleted value of the last successful
	// attempt, or 0 if none completed.
	LastCompleted int64

	// Elapsed is the wall time since the first attempt.
	Elapsed time.Duration

	// Err is the underlying cause, if any.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeProtocolFault indicates a result without exactly one record
	// carrying a numeric TotalCompleted field.
	ErrCodeProtocolFault RunErrorCode = "PROTOCOL_FAULT"

	// ErrCodeBudgetExceeded indicates the retry budget elapsed while the
	// store was still reporting affected rows.
	ErrCodeBudgetExceeded RunErrorCode = "RETRY_BUDGET_EXCEEDED"

	// ErrCodeCancelled indicates the context was cancelled between attempts.
	ErrCodeCancelled RunErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s (attempts=%d, last_completed=%d)", e.Code, e.Message, e.Attempts, e.LastCompleted)
	if e.RunID != "" {
		msg = fmt.Sprintf("%s (run=%s)", msg, e.RunID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsProtocolFault reports whether err is a protocol fault.
func IsProtocolFault(err error) bool {
	return hasCode(err, ErrCodeProtocolFault)
}

// IsBudgetExceeded reports whether err is a retry budget exhaustion.
func IsBudgetExceeded(err error) bool {
	return hasCode(err, ErrCodeBudgetExceeded)
}

// IsCancelled reports whether err is a cancellation of the iterative run.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

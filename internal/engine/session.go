package engine

import (
	"context"
	"errors"
	"fmt"
)

// TotalCompletedKey is the result field the iterative protocol reads to
// decide whether another batch is needed.
const TotalCompletedKey = "TotalCompleted"

// Session is the caller-owned capability for talking to the graph store.
//
// The executor only invokes Execute. It never opens, closes or retains a
// session beyond a single Run call.
type Session interface {
	Execute(ctx context.Context, query string, params map[string]any) (Result, error)
}

// Result is the handle returned by a Session for one query execution.
type Result interface {
	// Single returns the only record of the result.
	// It fails if the result holds zero or more than one record.
	Single() (Record, error)
}

// Record is one result row keyed by column name.
type Record map[string]any

// Get returns the value of a field and whether it was present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

var (
	// ErrNoRecords is returned by Records.Single on an empty result.
	ErrNoRecords = errors.New("result contains no records")

	// ErrMultipleRecords is returned by Records.Single when more than one
	// record is present.
	ErrMultipleRecords = errors.New("result contains more than one record")
)

// Records is a fully materialized Result.
type Records []Record

// Single implements Result.
func (rs Records) Single() (Record, error) {
	switch len(rs) {
	case 0:
		return nil, ErrNoRecords
	case 1:
		return rs[0], nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrMultipleRecords, len(rs))
	}
}
